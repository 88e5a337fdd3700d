package services

import "github.com/rs/zerolog"

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a user-facing message about a state change.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Notifier receives notifications fire-and-forget. Implementations must not
// block and must not call back into the component that notified them.
type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

// NewLogNotifier writes notifications to the logger.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return NotifierFunc(func(n Notification) {
		ev := logger.Info()
		if n.Kind == NotifyError {
			ev = logger.Warn()
		}
		ev.Str("kind", string(n.Kind)).Msg(n.Message)
	})
}
