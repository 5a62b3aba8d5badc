package agentrt

import (
	"errors"
	"testing"
	"time"

	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
)

// countingBehavior runs Action count times before Done reports true.
type countingBehavior struct {
	BaseBehavior
	want    int
	actions int
	setup   bool
}

func (b *countingBehavior) Setup(*Agent)  { b.setup = true }
func (b *countingBehavior) Action(*Agent) { b.actions++ }
func (b *countingBehavior) Done(*Agent) bool {
	return b.actions >= b.want
}

func newRunnerFixture(t *testing.T, d *deck.Deck, nickname string, amsAID core.Description) (*Agent, chan core.Message) {
	return newTestAgent(t, d, nickname, amsAID)
}

func TestExecuteBlocksUntilStartGate(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 4)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)

	a, _ := newRunnerFixture(t, d, "X", amsAID)
	b := &countingBehavior{want: 1}

	startGate := make(chan struct{})
	doneCh := make(chan struct{})

	go Execute(a, b, startGate, doneCh)

	select {
	case <-doneCh:
		t.Fatal("Execute returned before startGate closed")
	case <-time.After(20 * time.Millisecond):
	}

	close(startGate)

	select {
	case req := <-amsCh:
		// Stand in for the AMS: takedown waits for a reply to its Deregister.
		reply := core.Message{SenderAID: amsAID, ReceiverAID: req.Sender(), MessageType: core.Inform, Content: core.NoContent{}}
		_ = reply.Receiver().Send(reply, core.Blocking)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for takedown deregister request")
	}

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Execute never closed done after startGate released")
	}

	if !b.setup {
		t.Fatal("Setup never ran")
	}
	if b.actions != 1 {
		t.Fatalf("expected 1 action, got %d", b.actions)
	}
	if a.ControlBlock().Active() {
		t.Fatal("expected active flag cleared after loop exit")
	}
}

func TestExecuteQuitStopsWithoutFurtherAction(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 4)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)

	a, _ := newRunnerFixture(t, d, "X", amsAID)
	b := &countingBehavior{want: 1000}
	a.ControlBlock().SetQuit()

	startGate := make(chan struct{})
	close(startGate)
	doneCh := make(chan struct{})

	go Execute(a, b, startGate, doneCh)

	select {
	case req := <-amsCh:
		// Stand in for the AMS: takedown waits for a reply to its Deregister.
		reply := core.Message{SenderAID: amsAID, ReceiverAID: req.Sender(), MessageType: core.Inform, Content: core.NoContent{}}
		_ = reply.Receiver().Send(reply, core.Blocking)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for takedown deregister request")
	}

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Execute never returned after quit observed")
	}

	if b.actions != 0 {
		t.Fatalf("expected no actions run after quit, got %d", b.actions)
	}
}

func TestExecuteSuspendParksUntilUnpark(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 4)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)

	a, _ := newRunnerFixture(t, d, "X", amsAID)
	b := &countingBehavior{want: 1}
	a.ControlBlock().SetSuspend(true)

	startGate := make(chan struct{})
	close(startGate)
	doneCh := make(chan struct{})

	go Execute(a, b, startGate, doneCh)

	time.Sleep(20 * time.Millisecond)
	if b.actions != 0 {
		t.Fatalf("expected action held back by suspend, got %d", b.actions)
	}

	a.ControlBlock().Unpark()

	select {
	case req := <-amsCh:
		// Stand in for the AMS: takedown waits for a reply to its Deregister.
		reply := core.Message{SenderAID: amsAID, ReceiverAID: req.Sender(), MessageType: core.Inform, Content: core.NoContent{}}
		_ = reply.Receiver().Send(reply, core.Blocking)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for takedown deregister request")
	}

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Execute never returned after unpark")
	}

	if b.actions != 1 {
		t.Fatalf("expected 1 action after unpark, got %d", b.actions)
	}
}

func TestTakedownToleratesFailureReply(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 1)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)

	a, _ := newRunnerFixture(t, d, "X", amsAID)

	go func() {
		req := <-amsCh
		if req.MessageType != core.Request {
			t.Errorf("expected Request, got %v", req.MessageType)
		}
		if _, ok := req.Content.(core.RequestContent).Value.(core.DeregisterRequest); !ok {
			t.Errorf("expected DeregisterRequest content, got %T", req.Content)
		}
		reply := core.Message{
			SenderAID:   amsAID,
			ReceiverAID: req.Sender(),
			MessageType: core.Failure,
			Content:     core.NoContent{},
		}
		_ = reply.Receiver().Send(reply, core.Blocking)
	}()

	// takedown must not panic or hang on a Failure reply.
	takedown(a)
}

func TestTakedownSendFailureIsNonFatal(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 1)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)
	close(amsCh)

	a, _ := newRunnerFixture(t, d, "X", amsAID)

	// Sending into a closed AMS mailbox must surface as ErrDisconnected
	// internally but takedown itself only logs, it never panics.
	takedown(a)

	if err := a.SendToAID(amsAID); !errors.Is(err, core.ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected from closed AMS mailbox, got %v", err)
	}
}
