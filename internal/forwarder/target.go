package forwarder

import "errors"

// ErrTargetUnavailable marks a target that does not exist yet or has gone
// away. Resolvers and targets wrap it to request a retry.
var ErrTargetUnavailable = errors.New("target unavailable")

// ErrQueueFull is returned when a notification cannot be queued because
// MaxPending notifications are already waiting for the target.
var ErrQueueFull = errors.New("pending notification queue is full")

// ErrClosed is returned for notifications received after Close.
var ErrClosed = errors.New("forwarder closed")

// Target is the element notifications are forwarded to. Return values are
// only used for logging and retry; nothing is fed back to the event source.
//
// Remove must accept ids that were never passed to Add.
type Target interface {
	Add(name, id, version, launchURL string, enabled bool) error
	Enable(id string) error
	Disable(id string) error
	Remove(id string) error
}

// Resolver looks up the current target. It is called once per delivery.
type Resolver func() (Target, error)

// Op names a target operation.
type Op string

const (
	OpAdd     Op = "add"
	OpEnable  Op = "enable"
	OpDisable Op = "disable"
	OpRemove  Op = "remove"
)
