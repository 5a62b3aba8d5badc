package agentrt

import (
	"errors"
	"testing"
	"time"

	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
	"github.com/DRoMarin/caravela/hub"
)

func newTestAgent(t *testing.T, d *deck.Deck, nickname string, amsAID core.Description) (*Agent, chan core.Message) {
	t.Helper()
	ch := make(chan core.Message, 1)
	aid := core.NewDescription(nickname, "hap1", core.NewULID(), ch)
	h := hub.New(nickname, "hap1", aid, hub.Resources{Priority: 1, StackSize: 8}, ch, d)
	a := New(h, core.NewControlBlock(), amsAID, 64)
	return a, ch
}

func TestAddContactAIDDuplicate(t *testing.T) {
	d := deck.New(64)
	ams, _ := newTestAgent(t, d, "AMS", core.Description{})
	a, _ := newTestAgent(t, d, "X", ams.AID())

	peer := core.NewDescription("Peer", "hap1", core.NewULID(), nil)
	if err := a.AddContactAID("Peer", peer); err != nil {
		t.Fatalf("AddContactAID: %v", err)
	}
	if err := a.AddContactAID("Peer", peer); !errors.Is(err, core.ErrDuplicated) {
		t.Fatalf("expected ErrDuplicated, got %v", err)
	}
}

func TestAddContactAIDListFull(t *testing.T) {
	d := deck.New(64)
	ams, _ := newTestAgent(t, d, "AMS", core.Description{})
	a, _ := newTestAgent(t, d, "X", ams.AID())
	a.maxContacts = 1

	p1 := core.NewDescription("One", "hap1", core.NewULID(), nil)
	p2 := core.NewDescription("Two", "hap1", core.NewULID(), nil)

	if err := a.AddContactAID("One", p1); err != nil {
		t.Fatalf("add1: %v", err)
	}
	if err := a.AddContactAID("Two", p2); !errors.Is(err, core.ErrListFull) {
		t.Fatalf("expected ErrListFull, got %v", err)
	}
}

func TestAddContactAbsentPeer(t *testing.T) {
	d := deck.New(64)

	amsCh := make(chan core.Message, 1)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)

	a, _ := newTestAgent(t, d, "X", amsAID)

	// Simulate the AMS replying Failure to an unresolved search.
	go func() {
		req := <-amsCh
		reply := core.Message{
			SenderAID:   amsAID,
			ReceiverAID: req.Sender(),
			MessageType: core.Failure,
			Content:     core.NoContent{},
		}
		_ = reply.Receiver().Send(reply, core.Blocking)
	}()

	err := a.AddContact("Ghost")
	if !errors.Is(err, core.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if a.ContactCount() != 0 {
		t.Fatalf("contacts map should be unchanged, got %d entries", a.ContactCount())
	}
}

func TestAddContactSuccess(t *testing.T) {
	d := deck.New(64)
	amsCh := make(chan core.Message, 1)
	amsAID := core.NewDescription("AMS", "hap1", core.NewULID(), amsCh)
	a, _ := newTestAgent(t, d, "X", amsAID)

	found := core.NewDescription("Found", "hap1", core.NewULID(), nil)

	go func() {
		req := <-amsCh
		reply := core.Message{
			SenderAID:   amsAID,
			ReceiverAID: req.Sender(),
			MessageType: core.Inform,
			Content:     core.AIDContent{Value: found},
		}
		_ = reply.Receiver().Send(reply, core.Blocking)
	}()

	if err := a.AddContact("Found"); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	if a.ContactCount() != 1 {
		t.Fatalf("expected 1 contact, got %d", a.ContactCount())
	}
}

func TestWaitPublishesWaitingState(t *testing.T) {
	d := deck.New(64)
	ams, _ := newTestAgent(t, d, "AMS", core.Description{})
	a, _ := newTestAgent(t, d, "X", ams.AID())

	done := make(chan struct{})
	go func() {
		a.Wait(20 * time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	if a.ControlBlock().State() != core.Waiting {
		t.Fatalf("expected Waiting state during Wait, got %s", a.ControlBlock().State())
	}

	<-done
	if a.ControlBlock().Wait() {
		t.Fatalf("expected wait flag cleared after Wait returns")
	}
}
