package propagator

import (
	"fmt"
	"strings"
)

// Flavor indexes the three weak-interaction flavors.
type Flavor int

const (
	FlavorE Flavor = iota
	FlavorMu
	FlavorTau
)

func (f Flavor) String() string {
	switch f {
	case FlavorE:
		return "e"
	case FlavorMu:
		return "mu"
	case FlavorTau:
		return "tau"
	default:
		return "unknown"
	}
}

// Channel identifies one P(before -> after) entry of a probability matrix.
type Channel int

const (
	ChanEE Channel = iota
	ChanEMu
	ChanETau
	ChanMuE
	ChanMuMu
	ChanMuTau
	ChanTauE
	ChanTauMu
	ChanTauTau
)

// ChannelOf returns the channel for an oscillation from before to after.
func ChannelOf(before, after Flavor) Channel {
	return Channel(int(before)*3 + int(after))
}

func (ch Channel) String() string {
	before := Flavor(int(ch) / 3)
	after := Flavor(int(ch) % 3)
	return before.String() + "->" + after.String()
}

// ParseFlavor converts a flavor name ("e", "mu", "tau") to a Flavor.
func ParseFlavor(s string) (Flavor, error) {
	switch strings.TrimSpace(s) {
	case "e":
		return FlavorE, nil
	case "mu":
		return FlavorMu, nil
	case "tau":
		return FlavorTau, nil
	default:
		return 0, fmt.Errorf("unknown flavor %q", s)
	}
}

// ParseChannel converts a "before->after" channel name, e.g. "mu->e".
func ParseChannel(s string) (Channel, error) {
	before, after, ok := strings.Cut(s, "->")
	if !ok {
		return 0, fmt.Errorf("channel %q: want \"before->after\"", s)
	}
	b, err := ParseFlavor(before)
	if err != nil {
		return 0, err
	}
	a, err := ParseFlavor(after)
	if err != nil {
		return 0, err
	}
	return ChannelOf(b, a), nil
}

// Channels lists all nine oscillation channels in index order.
func Channels() []Channel {
	out := make([]Channel, 9)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}
