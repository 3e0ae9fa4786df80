package diag

import (
	"fmt"
	"sort"
)

// Code identifies one issue kind. Ranges group codes by check family;
// numeric values are stable and safe to reference from suppressions and
// golden output.
type Code uint16

const (
	UnknownCode Code = 0

	// Dependency-list shape
	DepInfo          Code = 1000
	DepLengthChanged Code = 1001
	DepListAbsent    Code = 1002
	DepListToggled   Code = 1003

	// Unstable references
	StbInfo              Code = 2000
	StbUnstableReference Code = 2001

	// Frequency heuristics
	FrqInfo               Code = 3000
	FrqExcessiveChange    Code = 3001
	FrqExcessiveRecompute Code = 3002

	// Context provision
	CtxInfo            Code = 4000
	CtxMissingProvider Code = 4001

	// Lifecycle
	LifInfo               Code = 5000
	LifUpdateAfterUnmount Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown issue",

	DepInfo:          "dependency list information",
	DepLengthChanged: "dependency list changed length between cycles",
	DepListAbsent:    "no dependency list supplied",
	DepListToggled:   "dependency list supplied on some cycles but not others",

	StbInfo:              "reference stability information",
	StbUnstableReference: "dependency is recreated with equal content every cycle",

	FrqInfo:               "frequency information",
	FrqExcessiveChange:    "tracked value changes identity on every cycle",
	FrqExcessiveRecompute: "memoized computation re-executes on every cycle",

	CtxInfo:            "context information",
	CtxMissingProvider: "context consumed without a provider",

	LifInfo:               "lifecycle information",
	LifUpdateAfterUnmount: "state update after unit unmounted",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DEP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STB%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FRQ%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CTX%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LIF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Codes returns every registered code in ascending numeric order.
func Codes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
