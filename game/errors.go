package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrRoomFull         = errors.New("room-full")
	ErrDuplicateName    = errors.New("duplicate-name")
	ErrNotHost          = errors.New("not-host")
	ErrRosterIncomplete = errors.New("roster-incomplete")
	ErrInvalidRoleCount = errors.New("invalid-role-count")
	ErrNotYetAssigned   = errors.New("not-yet-assigned")
)

// ErrCodesExhausted means the code alphabet/length can no longer cover the
// number of live rooms. That is a deployment sizing problem, not a request
// problem, so it is never retried.
var ErrCodesExhausted = errors.New("room-codes-exhausted")

// errAssignMismatch is internal: the pool and roster lengths diverged after
// creation-time validation. The owning room is force-closed when this surfaces.
var errAssignMismatch = errors.New("assignment-count-mismatch")
