package media

import (
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is where tracks send their audio. The speaker is process global, so
// one Output is shared by every Track.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Clear()
}

// Speaker is the Output backed by the system audio device. Init only
// reaches the device once.
type Speaker struct {
	mu     sync.Mutex
	inited bool
}

func NewSpeaker() *Speaker { return &Speaker{} }

func (s *Speaker) Init(sr beep.SampleRate, bufferSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		return nil
	}
	if err := speaker.Init(sr, bufferSize); err != nil {
		return err
	}
	s.inited = true
	return nil
}

func (s *Speaker) Play(st ...beep.Streamer) { speaker.Play(st...) }

func (s *Speaker) Lock() { speaker.Lock() }

func (s *Speaker) Unlock() { speaker.Unlock() }

// Clear drops every queued streamer. speaker.Clear takes the speaker lock
// itself, so callers must not hold it.
func (s *Speaker) Clear() { speaker.Clear() }
