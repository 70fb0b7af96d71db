package bon

import "github.com/shopspring/decimal"

type EventKind int

const (
	EventItemAdded EventKind = iota
	EventItemRemoved
	EventQuantityChanged
	EventCartCleared
	EventTotalChanged
	// EventLinkageSkipped reports a deposit guarantee step that was skipped.
	// The host line itself was still added or updated.
	EventLinkageSkipped
)

func (k EventKind) String() string {
	switch k {
	case EventItemAdded:
		return "item_added"
	case EventItemRemoved:
		return "item_removed"
	case EventQuantityChanged:
		return "quantity_changed"
	case EventCartCleared:
		return "cart_cleared"
	case EventTotalChanged:
		return "total_changed"
	case EventLinkageSkipped:
		return "linkage_skipped"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to subscribers in emission order.
// Handlers must not mutate the cart.
type Event struct {
	Kind    EventKind
	Item    *Item
	Total   decimal.Decimal
	Removed int
	Linkage *LinkageError
}

type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	kind EventKind
	id   uint64
}

type subscriber struct {
	id uint64
	h  Handler
}

type dispatcher struct {
	handlers map[EventKind][]subscriber
	next     uint64
}

func (d *dispatcher) subscribe(kind EventKind, h Handler) Subscription {
	if d.handlers == nil {
		d.handlers = make(map[EventKind][]subscriber)
	}
	d.next++
	d.handlers[kind] = append(d.handlers[kind], subscriber{id: d.next, h: h})
	return Subscription{kind: kind, id: d.next}
}

func (d *dispatcher) unsubscribe(s Subscription) bool {
	subs := d.handlers[s.kind]
	for i, sub := range subs {
		if sub.id == s.id {
			d.handlers[s.kind] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

func (d *dispatcher) emit(e Event) {
	subs := append([]subscriber(nil), d.handlers[e.Kind]...)
	for _, s := range subs {
		s.h(e)
	}
}
