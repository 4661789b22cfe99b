package core

// Frame is one encoded outbound message.
type Frame []byte

// SignalConnection abstracts the transport of one connection.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks; a full queue is reported as an error.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
