package reactive

// EventType identifies an engine event reported to an Observer.
type EventType uint8

const (
	// EventCellChange: a cell accepted a new value.
	EventCellChange EventType = iota + 1
	// EventFlush: a cell delivered its value to Count subscribers.
	EventFlush
	// EventRecompute: a computed node ran its compute function.
	EventRecompute
	// EventCacheHit: a computed node answered Get from its cache.
	EventCacheHit
	// EventInvalidate: a dependency of a computed node changed.
	EventInvalidate
	// EventDelivery: a computed node delivered to one subscriber.
	EventDelivery
	// EventBatchStart: the batch depth left zero.
	EventBatchStart
	// EventBatchEnd: the batch depth returned to zero and Count cells flushed.
	EventBatchEnd
	// EventDispose: an owner ran Count cleanups.
	EventDispose
	// EventPanic: a contained panic; Where says which tier contained it.
	EventPanic
)

// String returns the event type's name, as used in metric labels.
func (t EventType) String() string {
	switch t {
	case EventCellChange:
		return "cell_change"
	case EventFlush:
		return "flush"
	case EventRecompute:
		return "recompute"
	case EventCacheHit:
		return "cache_hit"
	case EventInvalidate:
		return "invalidate"
	case EventDelivery:
		return "delivery"
	case EventBatchStart:
		return "batch_start"
	case EventBatchEnd:
		return "batch_end"
	case EventDispose:
		return "dispose"
	case EventPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Event describes one step of the engine's algorithms. Fields that do not
// apply to a type are left zero.
type Event struct {
	Type EventType

	// Node and Name identify the value involved, if any.
	Node uint64
	Name string
	Kind Kind

	// Count is the number of subscribers, cells or cleanups involved.
	Count int

	// Owner is set for EventDispose.
	Owner Handle

	// Value is the plain projection of a cell's new value (EventCellChange).
	Value any

	// Where and Panic are set for EventPanic.
	Where string
	Panic any
}

// Observer receives engine events. Observe runs synchronously on the
// runtime's goroutine and must not write to reactive values.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}
