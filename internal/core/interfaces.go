package core

import "errors"

// ConnID identifies one accepted transport session. It is generated at
// accept time and never reused.
type ConnID string

var (
	ErrConnNotFound = errors.New("connection not found")
	ErrConnClosed   = errors.New("connection closed")
	ErrNotFound     = errors.New("not found")
)
