package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job does not exist or belongs to
	// another user.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoFiles is returned when a conversion is started with an empty
	// file list. The job is left unchanged.
	ErrNoFiles = errors.New("no files to convert")

	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
)
