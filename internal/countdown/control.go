package countdown

import "context"

type controlCmd int

const (
	cmdPause controlCmd = iota
	cmdResume
)

// Control carries pause/resume requests from the UI goroutine to a
// running Engine. Requests are buffered; the engine polls for them once
// per tick, so a pause takes effect at the next tick boundary.
type Control struct {
	cmds chan controlCmd
}

func NewControl() *Control {
	return &Control{cmds: make(chan controlCmd, 8)}
}

// Pause requests that the countdown stop the clock.
func (c *Control) Pause() {
	c.send(cmdPause)
}

// Resume releases a paused countdown.
func (c *Control) Resume() {
	c.send(cmdResume)
}

func (c *Control) send(cmd controlCmd) {
	select {
	case c.cmds <- cmd:
	default:
		// a full buffer means the engine is far behind; drop the request
	}
}

// pauseRequested drains pending commands without blocking and reports
// whether the most recent one was a pause.
func (c *Control) pauseRequested() bool {
	paused := false
	for {
		select {
		case cmd := <-c.cmds:
			paused = cmd == cmdPause
		default:
			return paused
		}
	}
}

// waitResume blocks until a resume request arrives or ctx is done.
func (c *Control) waitResume(ctx context.Context) error {
	for {
		select {
		case cmd := <-c.cmds:
			if cmd == cmdResume {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
