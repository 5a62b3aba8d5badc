// ABOUTME: AMSBehavior is the privileged directory service: it runs as an ordinary
// ABOUTME: agentrt.Agent whose Action implements the Request dispatch loop (service_function).
package ams

import (
	"log"

	"github.com/DRoMarin/caravela/agentrt"
	"github.com/DRoMarin/caravela/audit"
	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
)

// AMSBehavior implements agentrt.Behavior. Its Action method is the AMS's
// entire job: receive one message, reject non-Request traffic with
// NotUnderstood, dispatch Request traffic against Conditions and the Deck,
// and reply. Done always returns false: the AMS has no natural termination
// short of process exit, so its worker loop never runs agentrt's takedown
// path in practice.
type AMSBehavior struct {
	agentrt.BaseBehavior
	deck       *deck.Deck
	conditions Conditions
	sink       audit.Sink
}

// New returns an AMSBehavior bound to d, using PermissiveConditions and
// discarding audit events.
func New(d *deck.Deck) *AMSBehavior {
	return NewWithConditions(d, PermissiveConditions{})
}

// NewWithConditions returns an AMSBehavior bound to d under a caller-supplied
// policy.
func NewWithConditions(d *deck.Deck, cond Conditions) *AMSBehavior {
	return &AMSBehavior{deck: d, conditions: cond, sink: audit.NoopSink{}}
}

// SetSink installs an audit sink; every accepted mutation is recorded there
// after being applied to the Deck and before the reply is sent.
func (b *AMSBehavior) SetSink(sink audit.Sink) {
	if sink == nil {
		sink = audit.NoopSink{}
	}
	b.sink = sink
}

// Done never ends the AMS's loop.
func (b *AMSBehavior) Done(*agentrt.Agent) bool { return false }

// Action is service_function: receive, reject non-Request, dispatch, reply.
func (b *AMSBehavior) Action(a *agentrt.Agent) {
	mt, err := a.Receive()
	if err != nil {
		log.Printf("component=ams action=receive_failed err=%v", err)
		return
	}

	if mt != core.Request {
		b.reply(a, core.NotUnderstood, core.NoContent{})
		return
	}

	reqContent, ok := a.Msg().Content.(core.RequestContent)
	if !ok {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}

	b.dispatch(a, reqContent.Value)
}

// dispatch runs one RequestType against the Conditions policy and the Deck,
// then sends the resulting reply. Every branch below mirrors one bullet of
// the AMS dispatch table: check the specific condition, require the
// directory precondition, mutate, reply Ok/Failure. Search is the one
// read-only request type; it is gated solely by SearchCondition, never by
// ModificationCondition.
func (b *AMSBehavior) dispatch(a *agentrt.Agent, req core.RequestType) {
	if _, isSearch := req.(core.SearchRequest); !isSearch {
		if !b.conditions.ModificationCondition(req) {
			b.reply(a, core.Failure, core.NoContent{})
			return
		}
	}

	switch r := req.(type) {
	case core.SearchRequest:
		b.handleSearch(a, r)
	case core.RegisterRequest:
		b.handleRegister(a, r)
	case core.DeregisterRequest:
		b.handleDeregister(a, r)
	case core.SuspendRequest:
		b.handleSuspend(a, r)
	case core.ResumeRequest:
		b.handleResume(a, r)
	case core.TerminateRequest:
		b.handleTerminate(a, r)
	default:
		b.reply(a, core.Failure, core.NoContent{})
	}
}

func (b *AMSBehavior) handleSearch(a *agentrt.Agent, r core.SearchRequest) {
	if !b.conditions.SearchCondition(r.Name) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	found, err := b.deck.AIDFromName(r.Name)
	if err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.reply(a, core.Inform, core.AIDContent{Value: found})
}

func (b *AMSBehavior) handleRegister(a *agentrt.Agent, r core.RegisterRequest) {
	if !b.conditions.RegistrationCondition(r.AID) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	entry := &deck.AgentEntry{
		AID:          r.AID,
		ControlBlock: core.NewControlBlock(),
		StartGate:    make(chan struct{}),
		Done:         make(chan struct{}),
	}
	if err := b.deck.AddAgent(r.AID, entry); err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.record(core.RequestType(r), r.AID)
	b.reply(a, core.Inform, core.NoContent{})
}

func (b *AMSBehavior) handleDeregister(a *agentrt.Agent, r core.DeregisterRequest) {
	if !b.conditions.DeregistrationCondition(r.AID) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	entry, err := b.deck.RemoveAgent(r.AID)
	if err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.joinWorker(entry)
	b.record(core.RequestType(r), r.AID)
	b.reply(a, core.Inform, core.NoContent{})
}

func (b *AMSBehavior) handleSuspend(a *agentrt.Agent, r core.SuspendRequest) {
	if !b.conditions.SuspensionCondition(r.AID) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	entry, err := b.deck.GetAgent(r.AID)
	if err != nil || entry.ControlBlock.State() != core.Active {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	if err := b.deck.ModifyControlBlock(r.AID, deck.FieldSuspend, true); err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.record(core.RequestType(r), r.AID)
	b.reply(a, core.Inform, core.NoContent{})
}

func (b *AMSBehavior) handleResume(a *agentrt.Agent, r core.ResumeRequest) {
	if !b.conditions.ResumptionCondition(r.AID) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	entry, err := b.deck.GetAgent(r.AID)
	if err != nil || entry.ControlBlock.State() != core.Suspended {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	if err := b.deck.ModifyControlBlock(r.AID, deck.FieldSuspend, false); err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	if err := b.deck.UnparkAgent(r.AID); err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.record(core.RequestType(r), r.AID)
	b.reply(a, core.Inform, core.NoContent{})
}

func (b *AMSBehavior) handleTerminate(a *agentrt.Agent, r core.TerminateRequest) {
	if !b.conditions.TerminationCondition(r.AID) {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	entry, err := b.deck.GetAgent(r.AID)
	if err != nil || !entry.ControlBlock.Active() {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	if err := b.deck.ModifyControlBlock(r.AID, deck.FieldQuit, true); err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	// A suspended worker is still Active() == true, so this path accepts it;
	// unpark unconditionally so a currently-parked worker observes quit
	// instead of staying parked forever.
	entry.ControlBlock.Unpark()
	removed, err := b.deck.RemoveAgent(r.AID)
	if err != nil {
		b.reply(a, core.Failure, core.NoContent{})
		return
	}
	b.joinWorker(removed)
	b.record(core.RequestType(r), r.AID)
	b.reply(a, core.Inform, core.NoContent{})
}

// joinWorker waits for the worker's Execute loop to actually return in the
// background, logging completion. It never blocks Action: a worker parked
// mid-Action can take arbitrarily long to notice quit and unwind.
func (b *AMSBehavior) joinWorker(entry *deck.AgentEntry) {
	if entry.Done == nil {
		return
	}
	go func(aid core.Description, done <-chan struct{}) {
		<-done
		log.Printf("component=ams action=worker_joined aid=%s", aid)
	}(entry.AID, entry.Done)
}

func (b *AMSBehavior) record(req core.RequestType, aid core.Description) {
	if err := b.sink.Record(audit.Event{Request: req, AID: aid}); err != nil {
		log.Printf("component=ams action=audit_record_failed aid=%s err=%v", aid, err)
	}
}

func (b *AMSBehavior) reply(a *agentrt.Agent, mt core.MessageType, content core.Content) {
	requester := a.Msg().Sender()
	a.SetMsg(mt, content)
	if err := a.SendToAID(requester); err != nil {
		log.Printf("component=ams action=reply_failed to=%s err=%v", requester, err)
	}
}

var _ agentrt.Behavior = (*AMSBehavior)(nil)
