package orch

import (
	"context"
	"errors"

	"github.com/dkeye/telesync/internal/core"
	"github.com/dkeye/telesync/internal/protocol"
)

var (
	ErrAuth        = errors.New("auth failed")
	ErrNotFound    = errors.New("lookup miss")
	ErrPersistence = errors.New("persistence failed")
	ErrRateLimited = errors.New("rate limited")
)

// Reason classifies a dropped envelope for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMalformed),
		errors.Is(err, protocol.ErrMissingField),
		errors.Is(err, protocol.ErrInvalidFormat):
		return "decode"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotFound), errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
