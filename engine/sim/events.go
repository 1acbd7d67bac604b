package sim

// Event is a notable occurrence in the simulation.
type Event struct {
	Type    EventType
	Tick    uint64
	Payload interface{}
}

type EventType uint16

const (
	EvtUnitSpawned EventType = iota
	EvtUnitDied
	EvtUnitEngaged
	EvtBuilderSpawned
	EvtBuilderStalled
	EvtBuilderDied
	EvtRoadCompleted
	EvtStructureCompleted
	EvtStructureDestroyed
	EvtFieldRecomputed
)

func (t EventType) String() string {
	switch t {
	case EvtUnitSpawned:
		return "unit_spawned"
	case EvtUnitDied:
		return "unit_died"
	case EvtUnitEngaged:
		return "unit_engaged"
	case EvtBuilderSpawned:
		return "builder_spawned"
	case EvtBuilderStalled:
		return "builder_stalled"
	case EvtBuilderDied:
		return "builder_died"
	case EvtRoadCompleted:
		return "road_completed"
	case EvtStructureCompleted:
		return "structure_completed"
	case EvtStructureDestroyed:
		return "structure_destroyed"
	case EvtFieldRecomputed:
		return "field_recomputed"
	default:
		return "unknown"
	}
}

// EventBus dispatches events to listeners. Events queue during a tick and
// dispatch at its end, so handlers never re-enter a mutating system.
type EventBus struct {
	listeners map[EventType][]EventHandler
	all       []EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type.
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// OnAll registers a handler for every event type.
func (eb *EventBus) OnAll(h EventHandler) {
	eb.all = append(eb.all, h)
}

// Emit queues an event for dispatch.
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Dispatch processes all queued events.
func (eb *EventBus) Dispatch() {
	for _, e := range eb.queue {
		for _, h := range eb.listeners[e.Type] {
			h(e)
		}
		for _, h := range eb.all {
			h(e)
		}
	}
	eb.queue = eb.queue[:0]
}
