package domain

import "errors"

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyVoted is returned when a (election, voter) ballot already
	// exists, either from the pre-insert check or from the unique index.
	ErrAlreadyVoted = errors.New("ballot already cast for this election")

	// ErrAlreadyApplied is returned when a pending or approved application
	// exists for the same (profile, election, position).
	ErrAlreadyApplied = errors.New("application already submitted for this position")

	// ErrDuplicateEmail is returned when a voter-roll insert collides with
	// an already registered email for the election.
	ErrDuplicateEmail = errors.New("email already registered for this election")
)
