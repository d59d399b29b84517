package dom

type EventType string

const (
	PointerMove  EventType = "pointermove"
	PointerEnter EventType = "pointerenter"
	PointerLeave EventType = "pointerleave"
	Click        EventType = "click"
	Focus        EventType = "focus"
	Blur         EventType = "blur"
	Input        EventType = "input"
	Resize       EventType = "resize"
	Scroll       EventType = "scroll"
	Load         EventType = "load"
)

// bubbles reports whether the event travels from its target up to the
// document. Enter, leave, focus and blur stay on the target.
func (t EventType) bubbles() bool {
	switch t {
	case PointerEnter, PointerLeave, Focus, Blur:
		return false
	}
	return true
}

// Event carries viewport coordinates for pointer events. Target is nil for
// window-level events (resize, scroll, load).
type Event struct {
	Type   EventType
	X, Y   float64
	Target *Element

	stopped bool
}

func (e *Event) StopPropagation() { e.stopped = true }

func (e *Event) Stopped() bool { return e.stopped }

type Handler func(*Event)

type listener struct {
	id int
	fn Handler
}

type listenerSet struct {
	next int
	m    map[EventType][]listener
}

// add registers fn and returns a function that removes it again. Calling the
// remover more than once is harmless.
func (s *listenerSet) add(t EventType, fn Handler) func() {
	if s.m == nil {
		s.m = make(map[EventType][]listener)
	}
	s.next++
	id := s.next
	s.m[t] = append(s.m[t], listener{id: id, fn: fn})
	return func() {
		ls := s.m[t]
		for i := range ls {
			if ls[i].id == id {
				s.m[t] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// dispatch runs a snapshot of the handlers so that handlers may add or
// remove listeners while the event is being delivered. StopPropagation
// does not skip the remaining handlers on the same node.
func (s *listenerSet) dispatch(ev *Event) {
	ls := s.m[ev.Type]
	if len(ls) == 0 {
		return
	}
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

func (s *listenerSet) count() int {
	n := 0
	for _, ls := range s.m {
		n += len(ls)
	}
	return n
}
