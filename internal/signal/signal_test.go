package signal

import "testing"

func TestFromAny_StrictBooleanOnly(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{true, True},
		{false, False},
		{nil, Unknown},
		{"true", Unknown},
		{1.0, Unknown},
		{map[string]any{}, Unknown},
	}

	for _, c := range cases {
		if got := FromAny(c.in); got != c.want {
			t.Fatalf("FromAny(%#v)=%s want=%s", c.in, got, c.want)
		}
	}
}

func TestFromPtr(t *testing.T) {
	if FromPtr(nil) != Unknown {
		t.Fatalf("nil pointer must be unknown")
	}
	f := false
	if FromPtr(&f) != False {
		t.Fatalf("expected false")
	}
}

func TestSourceIsTransition(t *testing.T) {
	for _, s := range []Source{SourceGenericSnapshot, SourceProbe, SourceFallbackDefault, SourceNone} {
		if s.IsTransition() {
			t.Fatalf("%s must not be a transition", s)
		}
	}
	for _, s := range []Source{SourcePeriodStarted, SourcePeriodEnded} {
		if !s.IsTransition() {
			t.Fatalf("%s must be a transition", s)
		}
	}
}

func TestSourceString(t *testing.T) {
	if SourceFallbackDefault.String() != "fallback-default" {
		t.Fatalf("got %q", SourceFallbackDefault.String())
	}
	if Source(99).String() != "invalid" {
		t.Fatalf("out of range source must print invalid")
	}
}
