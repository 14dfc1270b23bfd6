package transcript

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUpstream          = errors.New("transcription upstream failed")
	ErrFilesystem        = errors.New("filesystem error")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotFinished    = errors.New("job not finished")
	ErrJobsDisabled      = errors.New("async jobs disabled")
	ErrEmailDisabled     = errors.New("email delivery disabled")
)

// ErrMalformedResponse marks upstream payloads the mapper cannot trust:
// empty segment lists, segments without speaker labels, undecodable JSON.
// It wraps ErrUpstream so callers match both with a single errors.Is.
var ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrUpstream)
