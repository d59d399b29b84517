package media

import (
	"testing"
	"time"
)

func TestSpeakerClearReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewSpeaker().Clear()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Speaker.Clear did not return")
	}
}
