package renderer

import "errors"

var (
	ErrNotInitialized     = errors.New("renderer: not initialized")
	ErrAlreadyInitialized = errors.New("renderer: already initialized")
	ErrCompileFailed      = errors.New("renderer: shader compilation failed")
	ErrLinkFailed         = errors.New("renderer: could not compile program")
)
