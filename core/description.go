// ABOUTME: Description (AID) is the canonical agent identity, carrying a routable send endpoint.
// ABOUTME: Equality and map-keying derive from the (Name, Hap, TaskID) tuple, never the channel.
package core

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Description, also called an AID, identifies one agent uniquely within a HAP.
// It is freely cloneable and is the only handle the Deck ever stores or a
// Message ever carries for its sender/receiver.
type Description struct {
	Name   string
	Hap    string
	TaskID ulid.ULID

	// mailbox is the send-only endpoint of the owning agent's capacity-1
	// mailbox. Unexported: callers route through Send, never the raw channel,
	// so the Deck never needs its own Description -> mailbox table.
	mailbox chan<- Message
}

// NewDescription builds a Description bound to the given mailbox sender.
func NewDescription(name, hap string, taskID ulid.ULID, mailbox chan<- Message) Description {
	return Description{Name: name, Hap: hap, TaskID: taskID, mailbox: mailbox}
}

// DescriptionKey is the comparable identity of a Description, suitable as a map key.
// Two Descriptions are the "same agent" iff their keys are equal.
type DescriptionKey struct {
	Name   string
	Hap    string
	TaskID ulid.ULID
}

// Key returns the comparable identity of this Description.
func (d Description) Key() DescriptionKey {
	return DescriptionKey{Name: d.Name, Hap: d.Hap, TaskID: d.TaskID}
}

// Equal reports whether two Descriptions name the same agent, ignoring the
// mailbox handle (which may differ across independently reconstructed copies
// of the same identity, e.g. after a round-trip through a directory lookup).
func (d Description) Equal(other Description) bool {
	return d.Key() == other.Key()
}

// String renders a human-readable identity, e.g. "A@hap1".
func (d Description) String() string {
	return fmt.Sprintf("%s@%s", d.Name, d.Hap)
}

// HasMailbox reports whether this Description carries a usable send endpoint.
// Descriptions rebuilt from a wire format without a live mailbox (not used by
// this in-process core, but relevant to any future persistence layer) report false.
func (d Description) HasMailbox() bool {
	return d.mailbox != nil
}
