package pricing

// Kind identifies a discount class the register can apply.
type Kind string

const (
	// KindPWD is the persons-with-disability discount class.
	KindPWD Kind = "pwd"
	// KindSenior is the senior citizen discount class.
	KindSenior Kind = "senior"
)

// Valid reports whether the kind names a known discount class.
func (k Kind) Valid() bool {
	return k == KindPWD || k == KindSenior
}

// Selection is the mutually exclusive discount flag pair. At most one flag
// is true at any time; Toggle maintains the invariant.
type Selection struct {
	PWD    bool `json:"pwd"`
	Senior bool `json:"senior"`
}

// Toggle flips the chosen kind and forces the other kind off. Toggling an
// already-active kind clears it, leaving no discount: the operation is
// one-step-memoryless, it never restores an earlier selection.
func (s Selection) Toggle(kind Kind) Selection {
	switch kind {
	case KindPWD:
		return Selection{PWD: !s.PWD}
	case KindSenior:
		return Selection{Senior: !s.Senior}
	default:
		return s
	}
}

// Active reports whether any discount class is selected.
func (s Selection) Active() bool {
	return s.PWD || s.Senior
}

// Label resolves the display label stamped on receipts and sale records.
// Both the live panel and the submitted payload must go through this single
// resolver so the two can never drift apart.
func (s Selection) Label() string {
	switch {
	case s.PWD:
		return "PWD"
	case s.Senior:
		return "Senior Citizen"
	default:
		return ""
	}
}
