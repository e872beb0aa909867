package models

var Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type VoteType string

const (
	VoteTypeOsis VoteType = "OSIS"
	VoteTypeMpk  VoteType = "MPK"
)

var ValidVoteTypes = map[VoteType]string{
	VoteTypeOsis: "OSIS",
	VoteTypeMpk:  "MPK",
}

const (
	RoleAdmin     = "ADMIN"
	RoleCommittee = "COMMITTEE"
	RoleTeacher   = "TEACHER"
	RoleUser      = "USER"
)

// VoterRoles are the roles counted in the registered voter roll.
var VoterRoles = map[string]bool{
	RoleUser:    true,
	RoleTeacher: true,
}
