// ABOUTME: ControlBlock holds the four atomic lifecycle flags shared between an agent's
// ABOUTME: worker goroutine and the AMS, plus the park channel realizing suspend/resume.
package core

import "sync/atomic"

// AgentState is the lifecycle state derived from a ControlBlock's flags.
// It is never stored directly; it is always computed on demand.
type AgentState int

const (
	Initiated AgentState = iota
	Active
	Waiting
	Suspended
)

// String implements fmt.Stringer.
func (s AgentState) String() string {
	switch s {
	case Initiated:
		return "Initiated"
	case Active:
		return "Active"
	case Waiting:
		return "Waiting"
	case Suspended:
		return "Suspended"
	default:
		return "Unknown"
	}
}

// ControlBlock is the shared, jointly-owned lifecycle state of one agent.
// The Deck's directory entry holds one reference and the agent's worker
// goroutine holds another; both observe the same flags. Every flag
// transition here is paired with either a channel operation or the park/
// unpark signal below, so relaxed atomic ordering is sufficient: the
// channel operation is what actually establishes the happens-before edge.
type ControlBlock struct {
	active  atomic.Bool
	wait    atomic.Bool
	suspend atomic.Bool
	quit    atomic.Bool

	// park realizes the suspend/resume auto-reset event described in the
	// platform's design notes: Suspend (AMS-driven, via ModifyControlBlock)
	// sets the suspend flag; the worker's own Suspend checkpoint blocks on
	// this channel until the AMS's Resume path signals it. Capacity 1 so a
	// Resume that arrives before the worker parks is not lost.
	park chan struct{}
}

// NewControlBlock returns a ControlBlock with all flags false.
func NewControlBlock() *ControlBlock {
	return &ControlBlock{park: make(chan struct{}, 1)}
}

// Active reports whether the agent has completed init() and not yet takedown().
func (c *ControlBlock) Active() bool { return c.active.Load() }

// SetActive sets the active flag. Called by the worker's init()/takedown().
func (c *ControlBlock) SetActive(v bool) { c.active.Store(v) }

// Wait reports whether the agent is sleeping in Agent.Wait.
func (c *ControlBlock) Wait() bool { return c.wait.Load() }

// SetWait sets the wait flag. Called only by the owning worker.
func (c *ControlBlock) SetWait(v bool) { c.wait.Store(v) }

// Suspend reports whether the AMS has suspended this agent.
func (c *ControlBlock) Suspend() bool { return c.suspend.Load() }

// SetSuspend sets the suspend flag. AMS-owned: the worker only ever reads it.
func (c *ControlBlock) SetSuspend(v bool) { c.suspend.Store(v) }

// Quit reports whether the AMS has asked this agent to terminate.
// Quit is monotone: once true it is never cleared.
func (c *ControlBlock) Quit() bool { return c.quit.Load() }

// SetQuit sets the quit flag true. There is no corresponding clear: quit is
// monotone for the lifetime of the ControlBlock.
func (c *ControlBlock) SetQuit() { c.quit.Store(true) }

// Unpark wakes a worker parked in Park. Non-blocking: if the worker hasn't
// parked yet, the signal is buffered (capacity 1) so it isn't lost.
func (c *ControlBlock) Unpark() {
	select {
	case c.park <- struct{}{}:
	default:
		// Already signalled and not yet consumed; nothing to do.
	}
}

// Park blocks until Unpark is called. The caller is expected to have already
// observed Suspend() == true; Park does not itself check the flag.
func (c *ControlBlock) Park() {
	<-c.park
}

// State derives the AgentState from the current flags, per the precedence
// Suspended > Waiting > Active > Initiated.
func (c *ControlBlock) State() AgentState {
	switch {
	case c.Suspend():
		return Suspended
	case c.Wait():
		return Waiting
	case c.Active():
		return Active
	default:
		return Initiated
	}
}
