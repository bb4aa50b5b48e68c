package model

// Role is a player's secret role for the length of a game
type Role string

const (
	RoleMurderer  Role = "murderer"
	RoleReviver   Role = "reviver"
	RoleDetective Role = "detective"
	RoleBodyguard Role = "bodyguard"
	RoleVigilante Role = "vigilante"
	RoleTroll     Role = "troll"
	RoleCivilian  Role = "civilian"
)

// RoleCategory groups roles by how they play
type RoleCategory string

const (
	CategoryAggressor RoleCategory = "aggressor"
	CategorySupport   RoleCategory = "support"
	CategoryPlain     RoleCategory = "plain"
)

// Theme selects the flavour text shown to players
type Theme string

const (
	ThemeClassic Theme = "classic"
	ThemeHoliday Theme = "holiday"
)

type roleInfo struct {
	label    string
	category RoleCategory
	themed   map[Theme]string
}

var roleRegistry = map[Role]roleInfo{
	RoleMurderer: {
		label:    "Murderer",
		category: CategoryAggressor,
		themed:   map[Theme]string{ThemeHoliday: "Krampus"},
	},
	RoleReviver: {
		label:    "Reviver",
		category: CategorySupport,
		themed:   map[Theme]string{ThemeHoliday: "Guardian Angel"},
	},
	RoleDetective: {
		label:    "Detective",
		category: CategorySupport,
		themed:   map[Theme]string{ThemeHoliday: "Elf on the Shelf"},
	},
	RoleBodyguard: {
		label:    "Bodyguard",
		category: CategorySupport,
		themed:   map[Theme]string{ThemeHoliday: "Nutcracker"},
	},
	RoleVigilante: {
		label:    "Vigilante",
		category: CategorySupport,
		themed:   map[Theme]string{ThemeHoliday: "Snowball Sniper"},
	},
	RoleTroll: {
		label:    "Troll",
		category: CategorySupport,
		themed:   map[Theme]string{ThemeHoliday: "Grinch"},
	},
	RoleCivilian: {
		label:    "Civilian",
		category: CategoryPlain,
		themed:   map[Theme]string{ThemeHoliday: "Villager"},
	},
}

// DefaultSupportOrder is the priority in which support roles are handed out
var DefaultSupportOrder = []Role{RoleReviver, RoleDetective, RoleBodyguard, RoleVigilante, RoleTroll}

// Category returns the role's category; unknown roles are plain
func (r Role) Category() RoleCategory {
	if info, ok := roleRegistry[r]; ok {
		return info.category
	}
	return CategoryPlain
}

// IsAggressor returns true for murderer-like roles
func IsAggressor(r Role) bool {
	return r.Category() == CategoryAggressor
}

// IsSupport returns true for roles with a helpful ability
func IsSupport(r Role) bool {
	return r.Category() == CategorySupport
}

// Label returns the display label of a role
func Label(r Role) string {
	if info, ok := roleRegistry[r]; ok {
		return info.label
	}
	return string(r)
}

// ThemedLabel returns the label for the given theme, falling back to the plain label
func ThemedLabel(r Role, theme Theme) string {
	if info, ok := roleRegistry[r]; ok {
		if l, ok := info.themed[theme]; ok {
			return l
		}
		return info.label
	}
	return string(r)
}
