// Package phrase groups incoming audio into spoken phrases using a
// silence-timeout heuristic: a wall-clock gap between chunks longer than the
// configured timeout starts a new phrase.
package phrase

import "time"

// DefaultTimeout is the silence gap that separates phrases.
const DefaultTimeout = 6 * time.Second

// Segmenter accumulates raw PCM for the phrase currently being spoken.
// It is not safe for concurrent use; the pipeline loop is its only caller.
type Segmenter struct {
	timeout      time.Duration
	lastReceived time.Time
	received     bool
	buf          []byte
}

// NewSegmenter creates a Segmenter with the given silence timeout. A zero or
// negative timeout falls back to DefaultTimeout.
func NewSegmenter(timeout time.Duration) *Segmenter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Segmenter{timeout: timeout}
}

// Advance feeds newly captured audio into the current phrase and returns the
// full accumulated phrase audio. newPhrase is true when the gap since the
// previous audio exceeded the timeout, in which case the buffer restarts with
// only the incoming audio. The very first audio never starts a new phrase.
func (s *Segmenter) Advance(now time.Time, audio []byte) (phraseAudio []byte, newPhrase bool) {
	if len(audio) == 0 {
		return s.snapshot(), false
	}

	if s.received && now.Sub(s.lastReceived) > s.timeout {
		s.buf = s.buf[:0]
		newPhrase = true
	}
	s.lastReceived = now
	s.received = true

	s.buf = append(s.buf, audio...)
	return s.snapshot(), newPhrase
}

// snapshot copies the accumulated buffer so later appends cannot alias the
// audio handed to the transcriber.
func (s *Segmenter) snapshot() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}
