package app

import "github.com/dkeye/telesync/internal/core"

type DeliveryAction int

const (
	// KeepEntry leaves the stale registry and presence entries in place.
	KeepEntry DeliveryAction = iota
	// EvictConnection drops the connection from the registry and
	// releases every presence binding pointing at it.
	EvictConnection
)

type Policy interface {
	OnSendFailure(conn core.ConnID, err error) DeliveryAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnSendFailure(core.ConnID, error) DeliveryAction {
	return KeepEntry
}

type EvictPolicy struct{}

func (EvictPolicy) OnSendFailure(core.ConnID, error) DeliveryAction {
	return EvictConnection
}
