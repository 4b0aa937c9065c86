package pricing

import "testing"

func TestToggleExclusivity(t *testing.T) {
	s := Selection{}
	s = s.Toggle(KindPWD)
	if !s.PWD || s.Senior {
		t.Fatalf("expected pwd only, got %+v", s)
	}
	s = s.Toggle(KindSenior)
	if s.PWD || !s.Senior {
		t.Fatalf("expected senior only, got %+v", s)
	}
}

func TestToggleClearsActiveKind(t *testing.T) {
	s := Selection{}
	s = s.Toggle(KindSenior).Toggle(KindSenior)
	if s.Active() {
		t.Fatalf("expected no discount after double toggle, got %+v", s)
	}
}

func TestToggleIsOneStepMemoryless(t *testing.T) {
	// pwd active, toggle senior twice: the pwd selection is not restored
	s := Selection{PWD: true}
	s = s.Toggle(KindSenior).Toggle(KindSenior)
	if s.Active() {
		t.Fatalf("expected empty selection, got %+v", s)
	}
}

func TestToggleUnknownKindIsNoop(t *testing.T) {
	s := Selection{PWD: true}
	if got := s.Toggle(Kind("employee")); got != s {
		t.Fatalf("expected selection unchanged, got %+v", got)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		sel  Selection
		want string
	}{
		{Selection{}, ""},
		{Selection{PWD: true}, "PWD"},
		{Selection{Senior: true}, "Senior Citizen"},
	}
	for _, tc := range cases {
		if got := tc.sel.Label(); got != tc.want {
			t.Fatalf("label for %+v: expected %q, got %q", tc.sel, tc.want, got)
		}
	}
}
