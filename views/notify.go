// ABOUTME: User-facing notifications raised by view writes
// ABOUTME: Surfaces plug in their own sink: a status line, a log or a response
package views

import (
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops notifications.
var Discard Notifier = NotifierFunc(func(Notification) {})

// LogNotifier writes notifications to a zap logger.
func LogNotifier(logger *zap.Logger) Notifier {
	return NotifierFunc(func(n Notification) {
		if n.Level == LevelError {
			logger.Error(n.Message)
			return
		}
		logger.Info(n.Message)
	})
}

// Inbox collects notifications until drained.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

func (i *Inbox) Notify(n Notification) {
	i.mu.Lock()
	i.items = append(i.items, n)
	i.mu.Unlock()
}

// Drain returns and clears the collected notifications.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	return out
}
