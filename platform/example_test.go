package platform

import (
	"fmt"

	"github.com/DRoMarin/caravela/agentrt"
	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/hapconfig"
)

type exampleReceiver struct {
	agentrt.BaseBehavior
	result chan core.Message
}

func (b *exampleReceiver) Action(a *agentrt.Agent) {
	if _, err := a.Receive(); err == nil {
		b.result <- a.Msg()
	}
}
func (b *exampleReceiver) Done(*agentrt.Agent) bool { return true }

type exampleSender struct {
	agentrt.BaseBehavior
	target string
}

func (b *exampleSender) Action(a *agentrt.Agent) {
	a.SetMsg(core.Inform, core.TextContent{Value: "hi"})
	_ = a.SendTo(b.target)
}
func (b *exampleSender) Done(*agentrt.Agent) bool { return true }

// Example_senderReceiver boots a Platform, registers a receiver "R" and a
// sender "S", and shows a prepared Inform(Text("hi")) message arriving with
// the sender's identity intact.
func Example_senderReceiver() {
	installed.Store(false) // one Platform per process; undo prior examples/tests in this binary

	p, err := New("hap1", hapconfig.Default())
	if err != nil {
		fmt.Println("New error:", err)
		return
	}

	recv := &exampleReceiver{result: make(chan core.Message, 1)}
	aidR, err := p.AddAgent("R", 1, 8, recv)
	if err != nil {
		fmt.Println("AddAgent R error:", err)
		return
	}

	send := &exampleSender{target: "R"}
	aidS, err := p.AddAgent("S", 1, 8, send)
	if err != nil {
		fmt.Println("AddAgent S error:", err)
		return
	}

	if err := p.Start(aidR); err != nil {
		fmt.Println("Start R error:", err)
		return
	}
	if err := p.Start(aidS); err != nil {
		fmt.Println("Start S error:", err)
		return
	}

	msg := <-recv.result
	fmt.Println(msg.Content.(core.TextContent).Value)
	fmt.Println(msg.Sender().Name)

	_ = aidS

	// Output:
	// hi
	// S
}
