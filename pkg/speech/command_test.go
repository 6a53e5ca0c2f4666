//go:build unix

package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("utterance did not finish")
		return nil
	}
}

func TestCommandEngine_NaturalCompletion(t *testing.T) {
	e := NewCommandEngine("true")

	done, err := e.Speak(NewUtterance("hello"))
	require.NoError(t, err)
	require.NoError(t, waitDone(t, done))
}

func TestCommandEngine_CancelIsIdempotent(t *testing.T) {
	e := NewCommandEngine("sleep")
	u := NewUtterance("30")

	done, err := e.Speak(u)
	require.NoError(t, err)

	e.Cancel(u)
	e.Cancel(u)

	assert.ErrorIs(t, waitDone(t, done), ErrCanceled)
}

func TestCommandEngine_SpeakCancelsPrevious(t *testing.T) {
	e := NewCommandEngine("sleep")
	first := NewUtterance("30")
	second := NewUtterance("30")

	firstDone, err := e.Speak(first)
	require.NoError(t, err)
	secondDone, err := e.Speak(second)
	require.NoError(t, err)

	assert.ErrorIs(t, waitDone(t, firstDone), ErrCanceled)

	// Only the active utterance can be paused.
	assert.ErrorIs(t, e.Pause(first), ErrNotActive)
	require.NoError(t, e.Pause(second))
	require.NoError(t, e.Resume(second))

	e.Cancel(second)
	assert.ErrorIs(t, waitDone(t, secondDone), ErrCanceled)
}

func TestCommandEngine_CancelWhilePaused(t *testing.T) {
	e := NewCommandEngine("sleep")
	u := NewUtterance("30")

	done, err := e.Speak(u)
	require.NoError(t, err)
	require.NoError(t, e.Pause(u))
	require.NoError(t, e.Pause(u))

	e.Cancel(u)
	assert.ErrorIs(t, waitDone(t, done), ErrCanceled)
	assert.ErrorIs(t, e.Resume(u), ErrNotActive)
}

func TestUnsupported(t *testing.T) {
	var e Engine = Unsupported{}

	_, err := e.Speak(NewUtterance("x"))
	require.ErrorIs(t, err, ErrUnsupported)
	e.Cancel(nil)
}

func TestNewUtterance_UniqueIDs(t *testing.T) {
	a := NewUtterance("a")
	b := NewUtterance("a")

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "a", b.Text())
}
