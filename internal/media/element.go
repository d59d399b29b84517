package media

// Event names follow the media element events the player listens for.
type Event string

const (
	LoadedMetadata Event = "loadedmetadata"
	TimeUpdate     Event = "timeupdate"
	Play           Event = "play"
	Pause          Event = "pause"
	Ended          Event = "ended"
	VolumeChange   Event = "volumechange"
)

// Element is the command and event surface of an audio element. Commands
// may be rejected; state changes are only ever announced through events.
type Element interface {
	Play() error
	Pause()
	CurrentTime() float64
	SetCurrentTime(sec float64)
	// Duration is NaN until metadata has loaded.
	Duration() float64
	Volume() float64
	SetVolume(v float64)
	Muted() bool
	SetMuted(m bool)
	Paused() bool
	On(ev Event, fn func()) (remove func())
	// Levels returns n smoothed loudness bands in [0, 1].
	Levels(n int) []float64
}

type handler struct {
	id int
	fn func()
}

type emitter struct {
	next     int
	handlers map[Event][]handler
}

func (e *emitter) on(ev Event, fn func()) func() {
	if e.handlers == nil {
		e.handlers = make(map[Event][]handler)
	}
	e.next++
	id := e.next
	e.handlers[ev] = append(e.handlers[ev], handler{id: id, fn: fn})
	return func() {
		hs := e.handlers[ev]
		for i := range hs {
			if hs[i].id == id {
				e.handlers[ev] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

func (e *emitter) emit(ev Event) {
	hs := append([]handler(nil), e.handlers[ev]...)
	for _, h := range hs {
		h.fn()
	}
}

func (e *emitter) count() int {
	n := 0
	for _, hs := range e.handlers {
		n += len(hs)
	}
	return n
}
