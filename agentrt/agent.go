// ABOUTME: Agent bundles a Hub, a capacity-bounded contacts directory, and the
// ABOUTME: shared ControlBlock; it is the user-visible surface of one running agent.
package agentrt

import (
	"sync"
	"time"

	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/hub"
)

// Agent is the user-visible handle a Behavior is run against. It delegates
// messaging to its Hub and keeps its own name->Description contacts cache,
// independent of (and usually smaller than) the Deck's directory.
type Agent struct {
	hub         *hub.Hub
	control     *core.ControlBlock
	amsAID      core.Description
	maxContacts int
	param       any

	mu       sync.Mutex
	contacts map[string]core.Description
}

// New builds an Agent around hub, sharing control with the Deck's entry for
// this agent and resolving AddContact searches against the given AMS AID.
func New(h *hub.Hub, control *core.ControlBlock, amsAID core.Description, maxContacts int) *Agent {
	return &Agent{
		hub:         h,
		control:     control,
		amsAID:      amsAID,
		maxContacts: maxContacts,
		contacts:    make(map[string]core.Description),
	}
}

// AID returns this agent's own Description.
func (a *Agent) AID() core.Description { return a.hub.AID }

// Msg returns the current (last sent or received) message.
func (a *Agent) Msg() core.Message { return a.hub.Msg() }

// SetMsg prepares an outbound message.
func (a *Agent) SetMsg(msgType core.MessageType, content core.Content) {
	a.hub.SetMsg(msgType, content)
}

// SendTo resolves name against the local contacts cache first, falling back
// to the Deck's directory, then sends the prepared message Blocking.
func (a *Agent) SendTo(name string) error {
	a.mu.Lock()
	recv, ok := a.contacts[name]
	a.mu.Unlock()
	if ok {
		return a.hub.SendToAID(recv)
	}
	return a.hub.SendTo(name)
}

// SendToAID sends the prepared message directly to a known Description.
func (a *Agent) SendToAID(recv core.Description) error {
	return a.hub.SendToAID(recv)
}

// Receive blocks on the mailbox and returns the received performative.
func (a *Agent) Receive() (core.MessageType, error) {
	return a.hub.Receive()
}

// AddContact resolves name through the AMS (Request(Search(name))) and, on
// success, caches the result locally. Errors distinguish an absent peer
// (ErrNotRegistered) from a malformed reply (ErrInvalidMessageType for an
// unexpected performative, ErrInvalidContent for an Inform without an AID)
// from a dropped AMS mailbox (ErrDisconnected).
func (a *Agent) AddContact(name string) error {
	a.SetMsg(core.Request, core.RequestContent{Value: core.SearchRequest{Name: name}})
	if err := a.SendToAID(a.amsAID); err != nil {
		return err
	}

	mt, err := a.Receive()
	if err != nil {
		return err
	}

	switch mt {
	case core.Inform:
		content, ok := a.Msg().Content.(core.AIDContent)
		if !ok {
			return core.ErrInvalidContent
		}
		return a.AddContactAID(name, content.Value)
	case core.Failure:
		return core.ErrNotRegistered
	default:
		return core.ErrInvalidMessageType
	}
}

// AddContactAID inserts a known Description into the contacts cache directly,
// enforcing the same duplicate and capacity checks AddContact relies on.
func (a *Agent) AddContactAID(name string, desc core.Description) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.contacts[name]; ok {
		return core.ErrDuplicated
	}
	if len(a.contacts) >= a.maxContacts {
		return core.ErrListFull
	}
	a.contacts[name] = desc
	return nil
}

// ContactCount returns the number of cached contacts.
func (a *Agent) ContactCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.contacts)
}

// Wait sleeps for the given duration, publishing the Waiting state for its
// length via the shared ControlBlock.
func (a *Agent) Wait(d time.Duration) {
	a.control.SetWait(true)
	time.Sleep(d)
	a.control.SetWait(false)
}

// ControlBlock exposes the agent's shared control block for the runner loop.
func (a *Agent) ControlBlock() *core.ControlBlock { return a.control }

// SetParam attaches the optional spawn-time parameter a Behavior's Setup may
// consult, matching AddAgentWithParam's "user type plus an optional
// parameter struct" contract.
func (a *Agent) SetParam(v any) { a.param = v }

// Param returns the spawn-time parameter, or nil if AddAgent (without
// WithParam) was used.
func (a *Agent) Param() any { return a.param }
