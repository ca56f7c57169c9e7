package conversation

import "testing"

func TestStartAlwaysReturnsToSelection(t *testing.T) {
	for _, current := range []Mode{ModeNone, ModeChat, ModeJournal, ModeOCR} {
		next, eff := Next(current, Event{Kind: EventStart})
		if next != ModeNone || eff != EffectPresentModes {
			t.Errorf("start from %q: got (%q, %d), want (ModeNone, EffectPresentModes)", current, next, eff)
		}
	}
}

func TestStartIsIdempotent(t *testing.T) {
	m, _ := Next(ModeNone, Event{Kind: EventStart})
	m2, eff := Next(m, Event{Kind: EventStart})
	if m2 != m || eff != EffectPresentModes {
		t.Errorf("second start: got (%q, %d), want same state and EffectPresentModes", m2, eff)
	}
}

func TestSelectEntersMode(t *testing.T) {
	for _, target := range []Mode{ModeChat, ModeJournal, ModeOCR} {
		next, eff := Next(ModeNone, Event{Kind: EventSelect, Mode: target})
		if next != target || eff != EffectModeInstructions {
			t.Errorf("select %q: got (%q, %d)", target, next, eff)
		}
	}
}

func TestSelectUnknownModeRejected(t *testing.T) {
	next, eff := Next(ModeNone, Event{Kind: EventSelect, Mode: Mode("banana")})
	if next != ModeNone || eff != EffectInvalidSelection {
		t.Errorf("got (%q, %d), want (ModeNone, EffectInvalidSelection)", next, eff)
	}
}

func TestSelectIgnoredInsideActiveMode(t *testing.T) {
	next, eff := Next(ModeJournal, Event{Kind: EventSelect, Mode: ModeChat})
	if next != ModeJournal || eff != EffectNone {
		t.Errorf("got (%q, %d), want (ModeJournal, EffectNone)", next, eff)
	}
}

func TestCancelAndEndClearMode(t *testing.T) {
	next, eff := Next(ModeOCR, Event{Kind: EventCancel})
	if next != ModeNone || eff != EffectCancelled {
		t.Errorf("cancel: got (%q, %d)", next, eff)
	}
	next, eff = Next(ModeChat, Event{Kind: EventEnd})
	if next != ModeNone || eff != EffectEnded {
		t.Errorf("end: got (%q, %d)", next, eff)
	}
}

func TestContentRequiresMode(t *testing.T) {
	next, eff := Next(ModeNone, Event{Kind: EventContent})
	if next != ModeNone || eff != EffectAskSelect {
		t.Errorf("content without mode: got (%q, %d)", next, eff)
	}
	next, eff = Next(ModeJournal, Event{Kind: EventContent})
	if next != ModeJournal || eff != EffectDispatch {
		t.Errorf("content in journal: got (%q, %d)", next, eff)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()
	if got := s.Get(42); got != ModeNone {
		t.Fatalf("fresh store: got %q, want ModeNone", got)
	}
	s.Set(42, ModeChat)
	if got := s.Get(42); got != ModeChat {
		t.Fatalf("after set: got %q, want ModeChat", got)
	}
	s.Set(42, ModeNone)
	if got := s.Get(42); got != ModeNone {
		t.Fatalf("after clear: got %q, want ModeNone", got)
	}
}
