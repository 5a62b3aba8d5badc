// ABOUTME: Behavior is the user-supplied capability set driving one agent's execution loop.
// ABOUTME: BaseBehavior supplies every default so a user type only overrides what it needs.
package agentrt

// Behavior is the interface user code implements to drive an agent. Every
// method has a sensible default via BaseBehavior, so a concrete Behavior
// need only embed BaseBehavior and override the capabilities it actually
// uses.
type Behavior interface {
	// Setup runs once, after init() and before the first action().
	Setup(a *Agent)

	// Action runs once per loop iteration, after the suspend checkpoint.
	Action(a *Agent)

	// Done is checked after Action (and any FDIR hooks); returning true ends
	// the loop and runs takedown.
	Done(a *Agent) bool

	// DetectFailure runs after Action; returning true triggers
	// IdentifyFailure then RecoverFailure before Done is checked.
	DetectFailure(a *Agent) bool

	// IdentifyFailure runs only when DetectFailure returned true.
	IdentifyFailure(a *Agent)

	// RecoverFailure runs only when DetectFailure returned true, after
	// IdentifyFailure.
	RecoverFailure(a *Agent)
}

// BaseBehavior implements every Behavior method as a no-op, except Done
// which returns true (an agent with no overrides runs exactly one action
// before terminating). Embed this in a concrete Behavior to pick and choose
// which capabilities to override.
type BaseBehavior struct{}

func (BaseBehavior) Setup(*Agent)              {}
func (BaseBehavior) Action(*Agent)             {}
func (BaseBehavior) Done(*Agent) bool          { return true }
func (BaseBehavior) DetectFailure(*Agent) bool { return false }
func (BaseBehavior) IdentifyFailure(*Agent)    {}
func (BaseBehavior) RecoverFailure(*Agent)     {}

var _ Behavior = BaseBehavior{}
