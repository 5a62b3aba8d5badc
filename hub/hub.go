// ABOUTME: Hub is an agent's messaging endpoint: its mailbox receiver, current
// ABOUTME: message slot, and the low-level send/receive primitives over the Deck.
package hub

import (
	"sync"

	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
)

// Resources bundles the spawn-time sizing knobs carried by a Hub, mirroring
// the source's per-agent {priority, stack size} resource pair.
type Resources struct {
	Priority  int
	StackSize int
}

// Hub is the per-agent messaging endpoint: nickname, hap, the agent's own
// AID, its resource sizing, its mailbox receiver, and the last message sent
// or received.
type Hub struct {
	Nickname  string
	Hap       string
	AID       core.Description
	Resources Resources

	deck *deck.Deck

	mailbox <-chan core.Message

	mu      sync.Mutex
	current core.Message
	hasMsg  bool
}

// New builds a Hub bound to aid's mailbox and d's routing.
func New(nickname, hap string, aid core.Description, resources Resources, mailbox <-chan core.Message, d *deck.Deck) *Hub {
	return &Hub{
		Nickname:  nickname,
		Hap:       hap,
		AID:       aid,
		Resources: resources,
		deck:      d,
		mailbox:   mailbox,
	}
}

// SetMsg prepares the outbound current message from a type/content pair. The
// sender is filled in lazily by SendTo/SendToAID if left zero.
func (h *Hub) SetMsg(msgType core.MessageType, content core.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = core.Message{MessageType: msgType, Content: content}
	h.hasMsg = true
}

// Msg returns the current message (last sent or received).
func (h *Hub) Msg() core.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// SendTo resolves name via the Deck's directory and sends the prepared
// message Blocking. Agents that maintain their own contacts cache should
// prefer resolving locally and calling SendToAID; SendTo always asks the
// Deck directly.
func (h *Hub) SendTo(name string) error {
	recv, err := h.deck.AIDFromName(name)
	if err != nil {
		return err
	}
	return h.SendToAID(recv)
}

// SendToAID sends the prepared current message to recv, Blocking.
func (h *Hub) SendToAID(recv core.Description) error {
	h.mu.Lock()
	if !h.hasMsg {
		h.mu.Unlock()
		return core.ErrInvalidContent
	}
	msg := h.current
	h.mu.Unlock()

	msg.SenderAID = h.AID
	msg.ReceiverAID = recv

	if err := h.deck.SendMsg(msg, core.Blocking); err != nil {
		return err
	}

	h.mu.Lock()
	h.current = msg
	h.mu.Unlock()
	return nil
}

// Receive blocks on the mailbox. On success it replaces the current message
// and returns its performative; on a closed mailbox it returns
// ErrDisconnected.
func (h *Hub) Receive() (core.MessageType, error) {
	msg, ok := <-h.mailbox
	if !ok {
		return core.None, core.ErrDisconnected
	}

	h.mu.Lock()
	h.current = msg
	h.hasMsg = true
	h.mu.Unlock()

	return msg.MessageType, nil
}
