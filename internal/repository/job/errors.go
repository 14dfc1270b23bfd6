package job

import "errors"

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrStorageError = errors.New("storage error")
)
