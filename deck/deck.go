// ABOUTME: Deck is the process-wide directory mapping agent identities to their
// ABOUTME: control blocks and worker handles, plus the message-routing primitive.
package deck

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/DRoMarin/caravela/core"
	"github.com/oklog/ulid/v2"
)

// AgentEntry is the Deck's bookkeeping record for one registered agent.
type AgentEntry struct {
	AID          core.Description
	ControlBlock *core.ControlBlock
	Priority     int

	// StartGate is closed by Platform.Start to release a worker parked at
	// minimum priority immediately after spawn; see the design notes on the
	// priority-as-start-gate substitution for goroutine runtimes.
	StartGate chan struct{}

	// Done is closed by the agent's execution loop when it returns, whether
	// by natural completion or forced termination. Callers that need to
	// "join" the worker (the AMS on Deregister) wait on this without holding
	// any Deck lock.
	Done chan struct{}
}

// amsEntry is the one-time-installed record for the privileged AMS agent.
type amsEntry struct {
	aid  core.Description
	done chan struct{}
}

// Deck is the platform singleton directory and router. All exported methods
// are safe for concurrent use; the directory is guarded by a single
// reader/writer lock (concurrent readers, one writer at a time).
type Deck struct {
	mu             sync.RWMutex
	directory      map[core.DescriptionKey]*AgentEntry
	ams            *amsEntry
	maxSubscribers int

	// poisoned records that a prior critical section panicked while holding
	// mu. A bare sync.RWMutex does not poison itself on a panicking holder
	// the way the source runtime's lock does, so this flag reproduces that
	// rule explicitly: once set, every later call fails fast with
	// core.ErrPoisonedLock instead of operating on a directory that may have
	// been left half-mutated.
	poisoned atomic.Bool
}

// New creates an empty Deck bounded at maxSubscribers entries.
func New(maxSubscribers int) *Deck {
	return &Deck{
		directory:      make(map[core.DescriptionKey]*AgentEntry),
		maxSubscribers: maxSubscribers,
	}
}

// withWriteLock runs fn while holding mu for writing. A panic inside fn is
// recovered, permanently poisons the Deck, and is reported to the caller as
// core.ErrPoisonedLock instead of crashing the caller's goroutine (the AMS's
// single request-handling loop).
func (d *Deck) withWriteLock(fn func() error) (err error) {
	if d.poisoned.Load() {
		return core.ErrPoisonedLock
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			d.poisoned.Store(true)
			err = fmt.Errorf("%w: %v", core.ErrPoisonedLock, r)
		}
	}()
	return fn()
}

// withReadLock is withWriteLock's read-side counterpart: once poisoned, reads
// are rejected too, since a panic that occurred mid-mutation leaves no
// guarantee the directory it would read is consistent.
func (d *Deck) withReadLock(fn func() error) (err error) {
	if d.poisoned.Load() {
		return core.ErrPoisonedLock
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			d.poisoned.Store(true)
			err = fmt.Errorf("%w: %v", core.ErrPoisonedLock, r)
		}
	}()
	return fn()
}

// AddAMS performs the one-time install of the AMS's own Description. It is
// the only write Platform.New itself performs directly on the Deck; later
// directory mutations come from Platform.AddAgent's bootstrap insert (see
// AddAgent) or from the AMS's own request pipeline.
func (d *Deck) AddAMS(aid core.Description, done chan struct{}) error {
	return d.withWriteLock(func() error {
		if d.ams != nil {
			return fmt.Errorf("add ams: %w", core.ErrDuplicated)
		}
		d.ams = &amsEntry{aid: aid, done: done}
		log.Printf("component=deck action=ams_installed aid=%s", aid)
		return nil
	})
}

// AMS returns the installed AMS Description, or ErrNotRegistered if
// Platform.New has not yet completed bootstrap.
func (d *Deck) AMS() (core.Description, error) {
	var aid core.Description
	err := d.withReadLock(func() error {
		if d.ams == nil {
			return core.ErrNotRegistered
		}
		aid = d.ams.aid
		return nil
	})
	return aid, err
}

// SearchAgent reports whether aid is currently registered.
func (d *Deck) SearchAgent(aid core.Description) error {
	return d.withReadLock(func() error {
		if _, ok := d.directory[aid.Key()]; !ok {
			return core.ErrNotRegistered
		}
		return nil
	})
}

// AddAgent inserts a new directory entry. Called by Platform.AddAgent at
// bootstrap (before the worker has a mailbox peer to message) and by the AMS
// servicing a Register request thereafter; no other caller should write
// here, or the "only the bootstrap path and the AMS mutate the directory"
// invariant is broken.
func (d *Deck) AddAgent(aid core.Description, entry *AgentEntry) error {
	return d.withWriteLock(func() error {
		if _, ok := d.directory[aid.Key()]; ok {
			return fmt.Errorf("add agent %s: %w", aid, core.ErrDuplicated)
		}
		if len(d.directory) >= d.maxSubscribers {
			return fmt.Errorf("add agent %s: %w", aid, core.ErrListFull)
		}

		d.directory[aid.Key()] = entry
		log.Printf("component=deck action=register aid=%s priority=%d size=%d", aid, entry.Priority, len(d.directory))
		return nil
	})
}

// GetAgent returns the directory entry for aid.
func (d *Deck) GetAgent(aid core.Description) (*AgentEntry, error) {
	var entry *AgentEntry
	err := d.withReadLock(func() error {
		e, ok := d.directory[aid.Key()]
		if !ok {
			return core.ErrNotRegistered
		}
		entry = e
		return nil
	})
	return entry, err
}

// RemoveAgent deletes aid from the directory and returns the removed entry so
// the caller (the AMS) may join the worker's completion channel. AMS-only.
func (d *Deck) RemoveAgent(aid core.Description) (*AgentEntry, error) {
	var entry *AgentEntry
	err := d.withWriteLock(func() error {
		e, ok := d.directory[aid.Key()]
		if !ok {
			return core.ErrNotRegistered
		}
		delete(d.directory, aid.Key())
		log.Printf("component=deck action=deregister aid=%s size=%d", aid, len(d.directory))
		entry = e
		return nil
	})
	return entry, err
}

// UnparkAgent wakes the worker behind aid from a suspension park. Returns
// ErrAidHandleNone if the entry carries no control block (should not happen
// for any entry this Deck itself created).
func (d *Deck) UnparkAgent(aid core.Description) error {
	var entry *AgentEntry
	err := d.withReadLock(func() error {
		e, ok := d.directory[aid.Key()]
		if !ok {
			return core.ErrNotRegistered
		}
		entry = e
		return nil
	})
	if err != nil {
		return err
	}
	if entry.ControlBlock == nil {
		return core.ErrAidHandleNone
	}
	entry.ControlBlock.Unpark()
	return nil
}

// ControlField identifies which ControlBlock flag ModifyControlBlock writes.
type ControlField int

const (
	FieldSuspend ControlField = iota
	FieldQuit
)

// ModifyControlBlock writes value to the named flag on aid's control block.
// AMS-only: quit and suspend are both AMS-owned flags in this design.
func (d *Deck) ModifyControlBlock(aid core.Description, field ControlField, value bool) error {
	entry, err := d.GetAgent(aid)
	if err != nil {
		return err
	}
	switch field {
	case FieldSuspend:
		entry.ControlBlock.SetSuspend(value)
	case FieldQuit:
		if value {
			entry.ControlBlock.SetQuit()
		}
	}
	return nil
}

// AIDFromName performs a linear scan of the directory for a nickname match.
func (d *Deck) AIDFromName(name string) (core.Description, error) {
	var aid core.Description
	err := d.withReadLock(func() error {
		for _, entry := range d.directory {
			if entry.AID.Name == name {
				aid = entry.AID
				return nil
			}
		}
		return core.ErrNotFound
	})
	return aid, err
}

// AIDFromTaskID performs a linear scan of the directory for a task id match.
func (d *Deck) AIDFromTaskID(taskID ulid.ULID) (core.Description, error) {
	var aid core.Description
	err := d.withReadLock(func() error {
		for _, entry := range d.directory {
			if entry.AID.TaskID == taskID {
				aid = entry.AID
				return nil
			}
		}
		return core.ErrNotFound
	})
	return aid, err
}

// Size returns the current directory size, or 0 if the Deck is poisoned.
func (d *Deck) Size() int {
	var n int
	_ = d.withReadLock(func() error {
		n = len(d.directory)
		return nil
	})
	return n
}

// AgentSnapshot is a read-only view of one directory entry, used by
// monitoring tools that must not hold the Deck lock while rendering.
type AgentSnapshot struct {
	AID      core.Description
	State    core.AgentState
	Priority int
}

// Snapshot copies the current directory into a slice of AgentSnapshot values,
// safe to read after the lock is released (e.g. by hapmonitor).
func (d *Deck) Snapshot() []AgentSnapshot {
	var out []AgentSnapshot
	_ = d.withReadLock(func() error {
		out = make([]AgentSnapshot, 0, len(d.directory))
		for _, entry := range d.directory {
			out = append(out, AgentSnapshot{
				AID:      entry.AID,
				State:    entry.ControlBlock.State(),
				Priority: entry.Priority,
			})
		}
		return nil
	})
	return out
}

// SendMsg routes msg to its receiver's mailbox. The Deck itself holds no
// Description -> mailbox table: the Description carries the send endpoint,
// so routing works even when the directory is momentarily stale (e.g. just
// after a removal the sender hasn't yet learned about).
func (d *Deck) SendMsg(msg core.Message, mode core.SyncMode) error {
	return msg.Receiver().Send(msg, mode)
}
