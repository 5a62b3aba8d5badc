// ABOUTME: Platform is the process-wide bootstrap façade: it installs the singleton
// ABOUTME: Deck, boots the AMS, and spawns/starts user agents against the given Behavior.
package platform

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/DRoMarin/caravela/agentrt"
	"github.com/DRoMarin/caravela/ams"
	"github.com/DRoMarin/caravela/audit"
	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
	"github.com/DRoMarin/caravela/hapconfig"
	"github.com/DRoMarin/caravela/hub"
)

// installed is the process-wide "a Platform already exists" flag. The
// source's single global Deck is represented this way: the flag itself is
// the only package-level state, and every collaborator still receives an
// explicit *deck.Deck handle rather than reaching through a package global.
var installed atomic.Bool

// Platform is one process's Host Agent Platform instance: a Deck, a running
// AMS, and the bootstrap operations used to populate the Deck with user
// agents.
type Platform struct {
	Hap string

	cfg    hapconfig.PlatformConfig
	deck   *deck.Deck
	amsAID core.Description
	amsB   *ams.AMSBehavior
}

// New installs the singleton Deck, boots the AMS under PermissiveConditions,
// and returns the Platform handle. A second call in the same process fails
// with ErrPlatformPresent.
func New(hap string, cfg hapconfig.PlatformConfig) (*Platform, error) {
	return NewWithConditions(hap, cfg, ams.PermissiveConditions{})
}

// NewWithConditions is New, but the AMS enforces cond instead of the
// permissive default. A zero-value cfg is replaced by hapconfig.Default().
func NewWithConditions(hap string, cfg hapconfig.PlatformConfig, cond ams.Conditions) (*Platform, error) {
	if cfg.MaxSubscribers == 0 && cfg.MaxPriority == 0 && cfg.DefaultStackSize == 0 && len(cfg.ReservedNicknames) == 0 {
		cfg = hapconfig.Default()
	}
	if !installed.CompareAndSwap(false, true) {
		return nil, core.ErrPlatformPresent
	}

	d := deck.New(cfg.MaxSubscribers)

	amsCh := make(chan core.Message, 1)
	amsAID := core.NewDescription("AMS", hap, core.NewULID(), amsCh)
	amsHub := hub.New("AMS", hap, amsAID, hub.Resources{Priority: cfg.MaxPriority, StackSize: cfg.DefaultStackSize}, amsCh, d)
	amsControl := core.NewControlBlock()
	amsAgent := agentrt.New(amsHub, amsControl, amsAID, cfg.MaxSubscribers)

	amsBehavior := ams.NewWithConditions(d, cond)
	amsDone := make(chan struct{})

	if err := d.AddAMS(amsAID, amsDone); err != nil {
		installed.Store(false)
		return nil, fmt.Errorf("boot ams: %w: %w", core.ErrAMSBoot, err)
	}

	// The AMS runs at the platform's effective maximum priority: nothing
	// gates it behind a start signal, it is runnable from the moment its
	// goroutine is scheduled.
	amsStartGate := make(chan struct{})
	close(amsStartGate)
	go agentrt.Execute(amsAgent, amsBehavior, amsStartGate, amsDone)

	return &Platform{Hap: hap, cfg: cfg, deck: d, amsAID: amsAID, amsB: amsBehavior}, nil
}

// SetAuditSink installs sink on the AMS: every accepted directory mutation
// from this point on is recorded there.
func (p *Platform) SetAuditSink(sink audit.Sink) {
	p.amsB.SetSink(sink)
}

// Deck returns the platform's directory and router, e.g. for hapmonitor.
func (p *Platform) Deck() *deck.Deck {
	return p.deck
}

// AddAgent spawns b as a new agent under nickname, parked at minimum
// priority until Start is called. It rejects a reserved nickname
// (ErrInvalidName), a duplicate nickname (ErrDuplicated), and a priority
// outside [0, MaxPriority) (ErrInvalidPriority).
func (p *Platform) AddAgent(nickname string, priority, stackSize int, b agentrt.Behavior) (core.Description, error) {
	return p.addAgent(nickname, priority, stackSize, b, nil)
}

// AddAgentWithParam is AddAgent, additionally attaching param for the
// Behavior's Setup to consult via Agent.Param.
func (p *Platform) AddAgentWithParam(nickname string, priority, stackSize int, b agentrt.Behavior, param any) (core.Description, error) {
	return p.addAgent(nickname, priority, stackSize, b, param)
}

func (p *Platform) addAgent(nickname string, priority, stackSize int, b agentrt.Behavior, param any) (core.Description, error) {
	if p.isReserved(nickname) {
		return core.Description{}, fmt.Errorf("add agent %q: %w", nickname, core.ErrInvalidName)
	}
	if priority < 0 || priority >= p.cfg.MaxPriority {
		return core.Description{}, fmt.Errorf("add agent %q priority %d: %w", nickname, priority, core.ErrInvalidPriority)
	}
	if _, err := p.deck.AIDFromName(nickname); err == nil {
		return core.Description{}, fmt.Errorf("add agent %q: %w", nickname, core.ErrDuplicated)
	}
	if stackSize <= 0 {
		stackSize = p.cfg.DefaultStackSize
	}

	mailbox := make(chan core.Message, 1)
	aid := core.NewDescription(nickname, p.Hap, core.NewULID(), mailbox)
	control := core.NewControlBlock()
	startGate := make(chan struct{})
	done := make(chan struct{})

	entry := &deck.AgentEntry{
		AID:          aid,
		ControlBlock: control,
		Priority:     priority,
		StartGate:    startGate,
		Done:         done,
	}
	if err := p.deck.AddAgent(aid, entry); err != nil {
		return core.Description{}, fmt.Errorf("add agent %q: %w", nickname, err)
	}

	h := hub.New(nickname, p.Hap, aid, hub.Resources{Priority: priority, StackSize: stackSize}, mailbox, p.deck)
	agent := agentrt.New(h, control, p.amsAID, p.cfg.MaxSubscribers)
	if param != nil {
		agent.SetParam(param)
	}

	go agentrt.Execute(agent, b, startGate, done)

	return aid, nil
}

// Start raises aid's worker out of its parked, minimum-priority state: the
// only transition from a latent worker to a running one. It is not
// idempotent: a second Start for the same agent closes an already-closed
// channel and panics, so Start may be called only once per agent.
func (p *Platform) Start(aid core.Description) error {
	entry, err := p.deck.GetAgent(aid)
	if err != nil {
		return fmt.Errorf("start %s: %w", aid, err)
	}
	if entry.StartGate == nil {
		return fmt.Errorf("start %s: %w", aid, core.ErrAgentStart)
	}
	close(entry.StartGate)
	return nil
}

func (p *Platform) isReserved(nickname string) bool {
	upper := strings.ToUpper(nickname)
	for _, reserved := range p.cfg.ReservedNicknames {
		if strings.ToUpper(reserved) == upper {
			return true
		}
	}
	return false
}
