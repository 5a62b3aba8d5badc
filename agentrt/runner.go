// ABOUTME: Execute drives one agent's init/setup/suspend/action/FDIR/done loop.
// ABOUTME: The sole cooperative yield points are the suspend checkpoint, Wait, and Receive.
package agentrt

import (
	"log"

	"github.com/DRoMarin/caravela/core"
)

// Execute runs the full lifecycle of one agent: it waits for startGate to
// close (the goroutine-runtime substitute for the source's priority-based
// start gate), then runs init/setup, then loops action/FDIR/done until
// Behavior.Done returns true or the control block's quit flag is observed
// at a suspend checkpoint. takedown runs on the way out either way, sending
// Request(Deregister(self)) to the AMS. done is closed when Execute
// returns, so callers (the AMS, on Deregister) can join the goroutine
// without blocking on it.
func Execute(a *Agent, b Behavior, startGate <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	<-startGate

	a.control.SetActive(true)
	log.Printf("component=agentrt action=init aid=%s", a.AID())

	b.Setup(a)

	for {
		suspendCheckpoint(a)

		if a.control.Quit() {
			break
		}

		b.Action(a)

		if b.DetectFailure(a) {
			b.IdentifyFailure(a)
			b.RecoverFailure(a)
		}

		if b.Done(a) {
			break
		}
	}

	a.control.SetActive(false)
	takedown(a)
}

// takedown sends Request(Deregister(self)) to the AMS and waits for a reply.
// A Terminate-driven exit has usually already had its entry removed by the
// AMS directly, so a Failure reply here (the AMS's directory no longer has
// this AID) is expected and not logged as an error.
func takedown(a *Agent) {
	a.SetMsg(core.Request, core.RequestContent{Value: core.DeregisterRequest{AID: a.AID()}})
	if err := a.SendToAID(a.amsAID); err != nil {
		log.Printf("component=agentrt action=takedown_send_failed aid=%s err=%v", a.AID(), err)
		return
	}

	mt, err := a.Receive()
	if err != nil {
		log.Printf("component=agentrt action=takedown_recv_failed aid=%s err=%v", a.AID(), err)
		return
	}
	if mt == core.Failure {
		log.Printf("component=agentrt action=takedown aid=%s note=already_removed_by_ams", a.AID())
		return
	}
	log.Printf("component=agentrt action=takedown aid=%s", a.AID())
}

// suspendCheckpoint is the sole cooperative yield point for AMS-driven
// suspension. It only ever reads the suspend flag (the AMS owns writing it)
// and parks on the shared ControlBlock until Resume unparks it.
func suspendCheckpoint(a *Agent) {
	if !a.control.Suspend() {
		return
	}
	a.control.Park()
}
