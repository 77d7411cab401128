package detector

import (
	"fmt"

	"github.com/skyward-ops/sectorwatch/internal/flight"
)

// Advisor actions.
const (
	ActionMinorDelays = "minor_delays"
	ActionDelayCargo  = "delay_cargo"
)

// Recommendation is the advisor's verdict for one hotspot: which flight to
// hold back and which one it protects.
type Recommendation struct {
	Action        string `json:"action"`
	DelayFlight   string `json:"delay_flight,omitempty"`
	ProtectFlight string `json:"protect_flight,omitempty"`
	Passengers    int    `json:"passengers,omitempty"`
	Text          string `json:"text"`
}

// Recommend partitions a hotspot's flights into cargo and passenger groups
// and suggests a prioritization. With no cargo present there is nothing to
// trade off, so the advice stays generic. With both groups present the first
// cargo flight (in the hotspot's sorted order) is delayed to protect the
// passenger flight carrying the most people; the first seen wins a passenger
// count tie. With cargo only, the first cargo flight is delayed outright.
// Flights missing from the lookup are ignored.
func Recommend(h Hotspot, lookup func(string) *flight.Flight) Recommendation {
	var cargo, passenger []*flight.Flight
	for _, acid := range h.Flights {
		f := lookup(acid)
		if f == nil {
			continue
		}
		if f.IsCargo {
			cargo = append(cargo, f)
		} else {
			passenger = append(passenger, f)
		}
	}

	if len(cargo) == 0 {
		return Recommendation{
			Action: ActionMinorDelays,
			Text:   "Only passenger flights involved. Consider minor delays for lower-priority routes.",
		}
	}

	delay := cargo[0]
	if len(passenger) == 0 {
		return Recommendation{
			Action:      ActionDelayCargo,
			DelayFlight: delay.ACID,
			Text:        fmt.Sprintf("Consider delaying cargo flight %s to reduce congestion.", delay.ACID),
		}
	}

	top := passenger[0]
	for _, f := range passenger[1:] {
		if f.Passengers > top.Passengers {
			top = f
		}
	}

	return Recommendation{
		Action:        ActionDelayCargo,
		DelayFlight:   delay.ACID,
		ProtectFlight: top.ACID,
		Passengers:    top.Passengers,
		Text: fmt.Sprintf("Delay cargo flight %s instead of passenger flight %s (%d passengers).",
			delay.ACID, top.ACID, top.Passengers),
	}
}
