package model

// VoteOutcome is the result of casting a vote. Accepted=false is a normal
// rejection (dead voter, self vote, second vote) with Message set.
type VoteOutcome struct {
	Accepted         bool        `json:"accepted"`
	Message          string      `json:"message,omitempty"`
	Eliminated       bool        `json:"eliminated"`
	EliminatedPlayer *PlayerView `json:"eliminatedPlayer,omitempty"`
	VoteCount        int         `json:"voteCount,omitempty"`
	Percentage       float64     `json:"percentage"`
	Threshold        int         `json:"threshold,omitempty"`
	Winner           Winner      `json:"winner,omitempty"`
}

// VoteTally is one row of the vote results
type VoteTally struct {
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
	Count      int    `json:"count"`
}
