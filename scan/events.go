package scan

import "time"

// EventType distinguishes progress notifications.
type EventType int

const (
	// EventRegionDone fires after each region of a service finishes.
	EventRegionDone EventType = iota
	// EventServiceStart fires when a service's fan-out begins.
	EventServiceStart
	// EventServiceDone fires once per completed service, in completion
	// order. This is the progress tick.
	EventServiceDone
)

// Event is one progress notification from the engine.
type Event struct {
	Type      EventType
	Service   string
	Region    string
	Resources int
	Duration  time.Duration
	Err       error
}

// Observer receives progress events. Calls are serialized per service
// but services complete concurrently, so implementations must be safe
// for concurrent use. A nil observer is ignored everywhere.
type Observer func(Event)

func notify(o Observer, e Event) {
	if o != nil {
		o(e)
	}
}
