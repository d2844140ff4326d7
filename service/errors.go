package service

import "errors"

var (
	// ErrMultipleOpenPaydays indicates more than one payday row with no end
	// time. This is a data-integrity fault: the run aborts rather than
	// guessing which record to resume.
	ErrMultipleOpenPaydays = errors.New("multiple open paydays found")

	// ErrAlreadyFinalized is returned when finalizing a payday that already
	// has an end time. The original end time is left untouched.
	ErrAlreadyFinalized = errors.New("payday already finalized")

	// ErrPaydayNotFound is returned when a payday ID matches no record
	ErrPaydayNotFound = errors.New("payday not found")
)
