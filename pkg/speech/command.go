package speech

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
)

// CommandEngine speaks by running an external synthesizer such as say(1) or
// espeak-ng(1). The utterance text is passed as the last argument.
type CommandEngine struct {
	name string
	args []string

	mu     sync.Mutex
	active *playback
}

type playback struct {
	utterance *Utterance
	cmd       *exec.Cmd
	paused    bool
	canceled  bool
}

// NewCommandEngine returns an engine running name with args followed by the text.
func NewCommandEngine(name string, args ...string) *CommandEngine {
	return &CommandEngine{name: name, args: args}
}

// candidates lists synthesizers in order of preference for each platform.
func candidates() [][]string {
	if runtime.GOOS == "darwin" {
		return [][]string{{"say"}}
	}
	return [][]string{
		{"espeak-ng"},
		{"espeak"},
		{"spd-say", "-w"},
	}
}

// Detect returns the first synthesizer found on PATH, or Unsupported.
func Detect() Engine {
	for _, c := range candidates() {
		if path, err := exec.LookPath(c[0]); err == nil {
			slog.Debug("Using text-to-speech command", "path", path)
			return NewCommandEngine(path, c[1:]...)
		}
	}
	slog.Debug("No text-to-speech command found")
	return Unsupported{}
}

func (e *CommandEngine) Speak(u *Utterance) (<-chan error, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()

	args := append(append([]string{}, e.args...), u.Text())
	cmd := exec.Command(e.name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	pb := &playback{utterance: u, cmd: cmd}
	e.active = pb

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		if pb.canceled {
			err = ErrCanceled
		}
		if e.active == pb {
			e.active = nil
		}
		e.mu.Unlock()

		done <- err
		close(done)
	}()

	return done, nil
}

func (e *CommandEngine) Pause(u *Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pb := e.activeFor(u)
	if pb == nil {
		return ErrNotActive
	}
	if pb.paused {
		return nil
	}
	if err := suspend(pb.cmd.Process); err != nil {
		return err
	}
	pb.paused = true
	return nil
}

func (e *CommandEngine) Resume(u *Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pb := e.activeFor(u)
	if pb == nil {
		return ErrNotActive
	}
	if !pb.paused {
		return nil
	}
	if err := resume(pb.cmd.Process); err != nil {
		return err
	}
	pb.paused = false
	return nil
}

func (e *CommandEngine) Cancel(u *Utterance) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeFor(u) != nil {
		e.cancelLocked()
	}
}

func (e *CommandEngine) activeFor(u *Utterance) *playback {
	if e.active == nil || u == nil || e.active.utterance.ID() != u.ID() {
		return nil
	}
	return e.active
}

func (e *CommandEngine) cancelLocked() {
	pb := e.active
	if pb == nil || pb.canceled {
		return
	}
	pb.canceled = true
	if pb.paused {
		// A stopped process still has to be woken to observe the kill on some platforms.
		_ = resume(pb.cmd.Process)
	}
	if err := pb.cmd.Process.Kill(); err != nil {
		slog.Debug("Failed to kill speech process", "error", err)
	}
	e.active = nil
}
