// ABOUTME: Conditions is the AMS's pluggable accept/reject policy, checked before
// ABOUTME: every directory-mutating request; PermissiveConditions defaults every hook to true.
package ams

import "github.com/DRoMarin/caravela/core"

// Conditions is the capability set a Platform may override to police the
// AMS's directory. Every predicate defaults to true via PermissiveConditions;
// a concrete policy need only override the checks it cares about.
type Conditions interface {
	// SearchCondition gates a Search request.
	SearchCondition(name string) bool

	// ModificationCondition gates any directory-mutating request before its
	// more specific predicate runs.
	ModificationCondition(req core.RequestType) bool

	// RegistrationCondition gates a Register request.
	RegistrationCondition(aid core.Description) bool

	// DeregistrationCondition gates a Deregister request.
	DeregistrationCondition(aid core.Description) bool

	// SuspensionCondition gates a Suspend request.
	SuspensionCondition(aid core.Description) bool

	// ResumptionCondition gates a Resume request.
	ResumptionCondition(aid core.Description) bool

	// TerminationCondition gates a Terminate request.
	TerminationCondition(aid core.Description) bool

	// ResetCondition gates a directory reset, reserved for administrative
	// tooling built on top of the AMS.
	ResetCondition() bool
}

// PermissiveConditions implements every Conditions predicate as an
// unconditional true. Embed it in a concrete policy to pick and choose which
// checks to tighten.
type PermissiveConditions struct{}

func (PermissiveConditions) SearchCondition(string) bool                   { return true }
func (PermissiveConditions) ModificationCondition(core.RequestType) bool   { return true }
func (PermissiveConditions) RegistrationCondition(core.Description) bool   { return true }
func (PermissiveConditions) DeregistrationCondition(core.Description) bool { return true }
func (PermissiveConditions) SuspensionCondition(core.Description) bool     { return true }
func (PermissiveConditions) ResumptionCondition(core.Description) bool     { return true }
func (PermissiveConditions) TerminationCondition(core.Description) bool   { return true }
func (PermissiveConditions) ResetCondition() bool                         { return true }

var _ Conditions = PermissiveConditions{}
