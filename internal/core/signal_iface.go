package core

// Frame is one serialized text message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// Send is never called concurrently for the same connection.
type SignalConnection interface {
	Send(Frame) error
	Close()
}
