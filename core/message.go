// ABOUTME: Message is the envelope for all agent communication; Content and RequestType
// ABOUTME: are tagged unions following the same sealed-interface pattern for every variant.
package core

import "fmt"

// MessageType enumerates the FIPA-style performatives a Message may carry.
type MessageType int

const (
	Inform MessageType = iota
	Request
	Failure
	NotUnderstood
	Agree
	Refuse
	Propose
	CallForProposal
	AcceptProposal
	Cancel
	Confirm
	Disconfirm
	QueryIf
	QueryRef
	Subscribe
	Propagate
	InformIf
	InformRef
	RequestWhen
	RequestWhenever
	None
)

// String implements fmt.Stringer for logging and test failure messages.
func (t MessageType) String() string {
	switch t {
	case Inform:
		return "Inform"
	case Request:
		return "Request"
	case Failure:
		return "Failure"
	case NotUnderstood:
		return "NotUnderstood"
	case Agree:
		return "Agree"
	case Refuse:
		return "Refuse"
	case Propose:
		return "Propose"
	case CallForProposal:
		return "CallForProposal"
	case AcceptProposal:
		return "AcceptProposal"
	case Cancel:
		return "Cancel"
	case Confirm:
		return "Confirm"
	case Disconfirm:
		return "Disconfirm"
	case QueryIf:
		return "QueryIf"
	case QueryRef:
		return "QueryRef"
	case Subscribe:
		return "Subscribe"
	case Propagate:
		return "Propagate"
	case InformIf:
		return "InformIf"
	case InformRef:
		return "InformRef"
	case RequestWhen:
		return "RequestWhen"
	case RequestWhenever:
		return "RequestWhenever"
	case None:
		return "None"
	default:
		return "Unknown"
	}
}

// Content is a tagged union carried by every Message: Text, Request, AID,
// Expression, or no payload at all.
type Content interface {
	ContentType() string
	contentSeal()
}

// TextContent carries a free-form string payload.
type TextContent struct {
	Value string
}

func (c TextContent) ContentType() string { return "Text" }
func (c TextContent) contentSeal()        {}

// RequestContent carries a RequestType payload bound for the AMS.
type RequestContent struct {
	Value RequestType
}

func (c RequestContent) ContentType() string { return "Request" }
func (c RequestContent) contentSeal()        {}

// AIDContent carries a Description payload, e.g. an AMS search result.
type AIDContent struct {
	Value Description
}

func (c AIDContent) ContentType() string { return "AID" }
func (c AIDContent) contentSeal()        {}

// ExpressionContent carries an opaque expression string, reserved for future
// query/predicate performatives (QueryIf, QueryRef).
type ExpressionContent struct {
	Value string
}

func (c ExpressionContent) ContentType() string { return "Expression" }
func (c ExpressionContent) contentSeal()        {}

// NoContent carries no payload.
type NoContent struct{}

func (c NoContent) ContentType() string { return "None" }
func (c NoContent) contentSeal()        {}

// RequestType is a tagged union of the directory mutations a client may ask
// the AMS to perform.
type RequestType interface {
	RequestTypeName() string
	requestSeal()
}

// SearchRequest looks up an agent by nickname.
type SearchRequest struct {
	Name string
}

func (r SearchRequest) RequestTypeName() string { return "Search" }
func (r SearchRequest) requestSeal()            {}

// RegisterRequest asks the AMS to add an agent to the directory.
type RegisterRequest struct {
	AID Description
}

func (r RegisterRequest) RequestTypeName() string { return "Register" }
func (r RegisterRequest) requestSeal()            {}

// DeregisterRequest asks the AMS to remove an agent from the directory.
type DeregisterRequest struct {
	AID Description
}

func (r DeregisterRequest) RequestTypeName() string { return "Deregister" }
func (r DeregisterRequest) requestSeal()            {}

// SuspendRequest asks the AMS to suspend an Active agent.
type SuspendRequest struct {
	AID Description
}

func (r SuspendRequest) RequestTypeName() string { return "Suspend" }
func (r SuspendRequest) requestSeal()            {}

// ResumeRequest asks the AMS to resume a Suspended agent.
type ResumeRequest struct {
	AID Description
}

func (r ResumeRequest) RequestTypeName() string { return "Resume" }
func (r ResumeRequest) requestSeal()            {}

// TerminateRequest asks the AMS to terminate an Active agent.
type TerminateRequest struct {
	AID Description
}

func (r TerminateRequest) RequestTypeName() string { return "Terminate" }
func (r TerminateRequest) requestSeal()            {}

// NoRequest carries no request payload.
type NoRequest struct{}

func (r NoRequest) RequestTypeName() string { return "None" }
func (r NoRequest) requestSeal()            {}

// Message is the unit of agent-to-agent and agent-to-AMS communication.
type Message struct {
	SenderAID   Description
	ReceiverAID Description
	MessageType MessageType
	Content     Content
}

// Sender returns the message's sender AID.
func (m Message) Sender() Description { return m.SenderAID }

// Receiver returns the message's receiver AID.
func (m Message) Receiver() Description { return m.ReceiverAID }

// SyncMode selects blocking or non-blocking send semantics for Description.Send.
type SyncMode int

const (
	// Blocking waits indefinitely for room in the receiver's mailbox.
	Blocking SyncMode = iota
	// NonBlocking fails fast with ErrChannelFull if the mailbox has no room.
	NonBlocking
)

// Send delivers msg to this Description's mailbox. Blocking waits for room;
// NonBlocking returns ErrChannelFull immediately if there is none. A mailbox
// whose receiver half has been closed (the owning agent has torn down) yields
// ErrDisconnected.
//
// Go offers no way to test whether the receive end of a channel has been
// closed before attempting a send, so a closed mailbox is detected by
// recovering from the "send on closed channel" panic at this one boundary.
func (d Description) Send(msg Message, mode SyncMode) (err error) {
	if d.mailbox == nil {
		return ErrAidHandleNone
	}

	defer func() {
		if r := recover(); r != nil {
			err = ErrDisconnected
		}
	}()

	switch mode {
	case NonBlocking:
		select {
		case d.mailbox <- msg:
		default:
			err = ErrChannelFull
		}
	default:
		d.mailbox <- msg
	}
	return err
}

var _ fmt.Stringer = MessageType(0)
