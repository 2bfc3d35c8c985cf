package store

import (
	"encoding/json"
	"errors"
	"log"
	"time"
)

const (
	// EventsKey holds the usage event list.
	EventsKey = "canvasEvents"
	// SeenTipsKey marks that the first-run tips were shown.
	SeenTipsKey = "canvasEditorSeenTips"
	// MaxEvents is how many events the log keeps.
	MaxEvents = 100
)

// KV is the storage the event log needs. *Store implements it.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Event is one tracked usage event.
type Event struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Identity  string `json:"identity"`
}

// EventLog appends usage events to a capped list. Every failure is logged
// and swallowed; tracking never interrupts the user.
type EventLog struct {
	kv       KV
	identity string
	now      func() time.Time
}

// NewEventLog returns a log writing to kv. kv may be nil when no storage is
// available, in which case events are only logged.
func NewEventLog(kv KV, identity string) *EventLog {
	return &EventLog{kv: kv, identity: identity, now: time.Now}
}

// Track records an event.
func (l *EventLog) Track(name string) {
	ts := l.now().UTC().Format(time.RFC3339Nano)
	log.Printf("[EVENTS] Event tracked: %s %s", name, ts)
	if l.kv == nil {
		return
	}

	events := l.Events()
	events = append(events, Event{Event: name, Timestamp: ts, Identity: l.identity})
	if len(events) > MaxEvents {
		events = events[len(events)-MaxEvents:]
	}
	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("[EVENTS] Encode failed: %v", err)
		return
	}
	if err := l.kv.Set(EventsKey, string(data)); err != nil {
		log.Printf("[EVENTS] Store failed: %v", err)
	}
}

// Events returns the stored events, oldest first.
func (l *EventLog) Events() []Event {
	if l.kv == nil {
		return nil
	}
	raw, err := l.kv.Get(EventsKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[EVENTS] Load failed: %v", err)
		}
		return nil
	}
	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		log.Printf("[EVENTS] Discarding unreadable log: %v", err)
		return nil
	}
	return events
}

// Flag is a single persistent boolean.
type Flag struct {
	kv  KV
	key string
}

func NewFlag(kv KV, key string) *Flag {
	return &Flag{kv: kv, key: key}
}

// IsSet reports whether the flag was stored. Without storage it is never set.
func (f *Flag) IsSet() bool {
	if f.kv == nil {
		return false
	}
	v, err := f.kv.Get(f.key)
	return err == nil && v == "true"
}

// Set stores the flag; failures are logged.
func (f *Flag) Set() {
	if f.kv == nil {
		return
	}
	if err := f.kv.Set(f.key, "true"); err != nil {
		log.Printf("[STORE] Could not persist %s: %v", f.key, err)
	}
}
