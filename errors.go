package diskshell

import (
	"errors"
	"fmt"
)

// Fatal errors: the store is missing, corrupt, or over its limit
var (
	ErrStoreNotFound     = errors.New("store not found")
	ErrInvalidKind       = errors.New("invalid record kind")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrStoreSizeExceeded = errors.New("store size limit exceeded")
)

// Per-operation errors; the session continues after reporting them
var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrPathNotFound      = errors.New("path not found")
	ErrIsDirectory       = errors.New("is a directory")
	ErrNotDirectory      = errors.New("not a directory")
	ErrInvalidName       = errors.New("invalid name")
	ErrLinkDepthExceeded = errors.New("too many levels of links")
)

// PathError records the operation and path that produced a per-operation error
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must end the session
func IsFatal(err error) bool {
	return errors.Is(err, ErrStoreNotFound) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrStoreSizeExceeded)
}

// Message renders err as the one-line text shown to the shell user
func Message(err error) string {
	var pe *PathError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "File exists: " + pe.Path
	case errors.Is(err, ErrPathNotFound):
		return "File not found: " + pe.Path
	case errors.Is(err, ErrIsDirectory):
		return pe.Path + ": Is a directory"
	case errors.Is(err, ErrNotDirectory):
		return "Not a directory: " + pe.Path
	case errors.Is(err, ErrInvalidName):
		return "Invalid name: " + pe.Path
	case errors.Is(err, ErrLinkDepthExceeded):
		return "Too many levels of links: " + pe.Path
	}
	return err.Error()
}
