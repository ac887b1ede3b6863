// Package progress narrates install phases to a detached status window.
// The window runs as a separate process (xlm re-invoked with a hidden
// subcommand) because the GUI event loop must own a thread for the lifetime
// of the window; messages flow one way over the child's stdin, one line per
// message, with no response channel.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/blooym/xlm/internal/logging"
)

// UISubcommand is the hidden subcommand the child process is started with.
const UISubcommand = "internal-launch-ui"

// queueDepth bounds the message queue. Senders never block: when the queue
// is full, messages are dropped — the window only ever shows the most
// recent phase anyway.
const queueDepth = 32

// Channel owns the status window child process and the queue feeding it.
// A nil *Channel is valid and turns Send and Close into no-ops.
type Channel struct {
	stdin io.WriteCloser
	kill  func()

	queue chan string
	done  chan struct{}
	once  sync.Once
}

// Open spawns the status window and returns a Channel for narrating phases
// to it. It returns nil (disabled) when the environment is known to be
// incompatible with spawning a windowed child, or when the spawn itself
// fails — install progress is best-effort and never blocks an install.
func Open(ctx context.Context) *Channel {
	log := logging.FromContext(ctx)

	// Snap's confinement breaks re-invoking the executable with a GUI.
	if _, inSnap := os.LookupEnv("SNAP"); inSnap {
		log.Warn().
			Ctx(ctx).
			Str("component", "progress").
			Msg("running inside snap, status window disabled")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		log.Warn().Ctx(ctx).Str("component", "progress").Err(err).Msg("could not resolve own executable, status window disabled")
		return nil
	}

	cmd := exec.Command(exe, UISubcommand)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Warn().Ctx(ctx).Str("component", "progress").Err(err).Msg("could not create pipe, status window disabled")
		return nil
	}

	if err := cmd.Start(); err != nil {
		log.Warn().Ctx(ctx).Str("component", "progress").Err(err).Msg("could not start status window")
		return nil
	}

	kill := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	}

	return newChannel(stdin, kill)
}

// newChannel wires the queue and relay worker around an already-open pipe.
// Split from Open so tests can drive the relay without spawning a window.
func newChannel(stdin io.WriteCloser, kill func()) *Channel {
	c := &Channel{
		stdin: stdin,
		kill:  kill,
		queue: make(chan string, queueDepth),
		done:  make(chan struct{}),
	}
	go c.relay()
	return c
}

// relay drains the queue into the child's stdin so Send never blocks the
// caller on pipe I/O.
func (c *Channel) relay() {
	for {
		select {
		case msg := <-c.queue:
			if _, err := fmt.Fprintln(c.stdin, msg); err != nil {
				// Child is gone; keep draining so senders stay unblocked.
				continue
			}
		case <-c.done:
			return
		}
	}
}

// Send queues one status line for the window. Safe on a nil or closed
// Channel; never blocks.
func (c *Channel) Send(text string) {
	if c == nil {
		return
	}
	select {
	case <-c.done:
	case c.queue <- text:
	default:
	}
}

// Close terminates the status window unconditionally. There is no shutdown
// handshake; the child tolerates abrupt termination. Safe on a nil Channel
// and idempotent.
func (c *Channel) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		close(c.done)
		_ = c.stdin.Close()
		if c.kill != nil {
			c.kill()
		}
	})
}
