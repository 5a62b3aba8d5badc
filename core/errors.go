// ABOUTME: Sentinel and typed errors forming the platform's error taxonomy.
// ABOUTME: Stateless conditions are sentinel vars; errors carrying data get their own type.
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPlatformPresent indicates a Platform already exists in this process.
	ErrPlatformPresent = errors.New("platform already present")

	// ErrAMSBoot indicates the AMS task failed to start during Platform bootstrap.
	ErrAMSBoot = errors.New("ams failed to boot")

	// ErrAgentLaunch indicates a worker goroutine could not be launched.
	ErrAgentLaunch = errors.New("agent launch failed")

	// ErrAgentPanic indicates a worker goroutine panicked during execution.
	ErrAgentPanic = errors.New("agent panicked")

	// ErrAgentStart indicates Start could not release a parked worker.
	ErrAgentStart = errors.New("agent start failed")

	// ErrInvalidName indicates a reserved or malformed nickname was used.
	ErrInvalidName = errors.New("invalid agent name")

	// ErrInvalidPriority indicates a priority outside [0, MaxPriority) was given.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidRequest indicates a request could not be serviced as shaped.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidContent indicates a message content variant didn't match the performative.
	ErrInvalidContent = errors.New("invalid message content")

	// ErrInvalidMessageType indicates an unexpected performative was received.
	ErrInvalidMessageType = errors.New("invalid message type")

	// ErrDuplicated indicates an AID is already present where uniqueness is required.
	ErrDuplicated = errors.New("duplicated agent")

	// ErrNotFound indicates a lookup (by name or task id) found nothing.
	ErrNotFound = errors.New("not found")

	// ErrNotRegistered indicates the agent is not present in the directory.
	ErrNotRegistered = errors.New("agent not registered")

	// ErrListFull indicates a bounded collection (directory or contacts) is at capacity.
	ErrListFull = errors.New("list full")

	// ErrDisconnected indicates the receiver's mailbox has been closed.
	ErrDisconnected = errors.New("receiver disconnected")

	// ErrChannelFull indicates a non-blocking send found no room in the mailbox.
	ErrChannelFull = errors.New("channel full")

	// ErrAidHandleNone indicates a directory entry has no live worker handle.
	ErrAidHandleNone = errors.New("agent handle unavailable")

	// ErrPoisonedLock indicates the Deck's directory lock was left in an inconsistent
	// state by a panicking holder; the platform cannot safely continue.
	ErrPoisonedLock = errors.New("deck lock poisoned")

	// ErrMpscRecv indicates a blocking receive failed because the mailbox was closed.
	ErrMpscRecv = errors.New("mailbox receive failed")
)

// InvalidStateChangeError reports an illegal AgentState transition attempt.
type InvalidStateChangeError struct {
	From AgentState
	To   AgentState
}

func (e *InvalidStateChangeError) Error() string {
	return fmt.Sprintf("invalid state change: %s -> %s", e.From, e.To)
}

// InvalidConditionsError reports that a Conditions predicate rejected a request.
type InvalidConditionsError struct {
	Request RequestType
}

func (e *InvalidConditionsError) Error() string {
	return fmt.Sprintf("conditions rejected request: %s", e.Request.RequestTypeName())
}

// DuplicatedError reports that the given AID is already registered.
type DuplicatedError struct {
	AID Description
}

func (e *DuplicatedError) Error() string {
	return fmt.Sprintf("duplicated agent: %s", e.AID)
}
