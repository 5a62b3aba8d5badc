// ABOUTME: Sink is the AMS's optional directory-mutation audit hook.
// ABOUTME: NoopSink is the zero-value default so the core platform carries no storage dependency.
package audit

import "github.com/DRoMarin/caravela/core"

// Event is one accepted, already-applied directory mutation the AMS reports
// to a Sink. Rejected requests (failed Conditions checks, unknown AIDs) are
// never recorded: a Sink sees only what actually happened to the directory.
type Event struct {
	Request core.RequestType
	AID     core.Description
}

// Sink records accepted AMS directory mutations. Implementations must not
// block the AMS's service loop for long; Record runs synchronously on the
// AMS's own goroutine after the mutation is applied and before the reply is
// built and sent.
type Sink interface {
	Record(evt Event) error
}

// NoopSink discards every event. It is the Platform default so wiring an
// audit trail is opt-in.
type NoopSink struct{}

func (NoopSink) Record(Event) error { return nil }

var _ Sink = NoopSink{}
