package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrItemAlreadyExists = errors.New("item with this key already exists")

// ErrBallotExists is returned when the ballot key condition fails, i.e. a
// ballot for the same (voter, period, type) was already committed.
var ErrBallotExists = errors.New("ballot already exists for this voter, period and type")
