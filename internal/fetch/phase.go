package fetch

import "fmt"

// Phase is the position of a fetch in the request/response sequence.
// phases only move forward, Done is reachable from any of them.
type Phase int

const (
	Init Phase = iota
	ResolvingName
	Connecting
	SendingRequest
	ReceivingStatusLine
	ReceivingHeaders
	ReceivingBody
	Done
)

var phaseNames = [...]string{
	Init:                "init",
	ResolvingName:       "resolving_name",
	Connecting:          "connecting",
	SendingRequest:      "sending_request",
	ReceivingStatusLine: "receiving_status_line",
	ReceivingHeaders:    "receiving_headers",
	ReceivingBody:       "receiving_body",
	Done:                "done",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (fx *Fetch) advance(p Phase) {
	if p < fx.phase {
		panic(fmt.Sprintf("fetch %d: phase moved backwards from %s to %s", fx.id, fx.phase, p))
	}
	if p != fx.phase {
		fx.log.WithField("phase", p).Debug("phase changed")
	}
	fx.phase = p
}
