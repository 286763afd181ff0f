package setup

import "sync"

// Level is the severity of a user-facing notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows dismissible messages to the user. Implementations must be
// safe for concurrent use; the committer notifies from several goroutines.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Notification is one recorded message
type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps every notification in order
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{Level: level, Message: msg})
}

// Entries returns a copy of what was recorded
func (r *Recorder) Entries() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.entries...)
}

// Count returns how many notifications of level were recorded
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
