// Package speech drives the platform text-to-speech service.
//
// An Engine plays at most one Utterance at a time: speaking a new one
// cancels whatever was playing before.
package speech

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrUnsupported is returned when no text-to-speech backend is available.
	ErrUnsupported = errors.New("speech: text-to-speech is not available on this system")
	// ErrCanceled is delivered on the done channel of a cancelled utterance.
	ErrCanceled = errors.New("speech: utterance canceled")
	// ErrNotActive is returned when pausing or resuming an utterance that is not playing.
	ErrNotActive = errors.New("speech: utterance is not active")
)

var lastUtteranceID atomic.Uint64

// Utterance is a piece of text bound for the synthesizer.
type Utterance struct {
	id   uint64
	text string
}

// NewUtterance builds a fresh utterance for text.
func NewUtterance(text string) *Utterance {
	return &Utterance{
		id:   lastUtteranceID.Add(1),
		text: text,
	}
}

func (u *Utterance) ID() uint64   { return u.id }
func (u *Utterance) Text() string { return u.text }

// Engine is a text-to-speech backend.
type Engine interface {
	// Speak starts playing u, cancelling any other active utterance. The
	// returned channel receives exactly one value when playback ends: nil on
	// natural completion, ErrCanceled, or the playback error.
	Speak(u *Utterance) (<-chan error, error)
	// Pause suspends u if it is the active utterance.
	Pause(u *Utterance) error
	// Resume continues a paused u.
	Resume(u *Utterance) error
	// Cancel stops u if it is active. Cancelling twice, or cancelling an
	// inactive utterance, is a no-op.
	Cancel(u *Utterance)
}

// Unsupported is the engine used when nothing can synthesize speech.
type Unsupported struct{}

func (Unsupported) Speak(*Utterance) (<-chan error, error) { return nil, ErrUnsupported }
func (Unsupported) Pause(*Utterance) error                 { return ErrUnsupported }
func (Unsupported) Resume(*Utterance) error                { return ErrUnsupported }
func (Unsupported) Cancel(*Utterance)                      {}
