package client

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient, user facing message.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices from every component. Notices caused by the
// change feed are delivered on the feed's reader goroutine, one at a time and
// in order. Notify must return promptly and must not call Mirror.Unsubscribe
// or Session.Close: both wait for that goroutine to exit and would deadlock.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func notify(n Notifier, level Level, message string) {
	if n == nil {
		return
	}
	n.Notify(Notice{Level: level, Message: message})
}
