package status

import (
	"testing"

	"github.com/tamzrod/contact-availability/internal/resolver"
	"github.com/tamzrod/contact-availability/internal/signal"
	"github.com/tamzrod/contact-availability/internal/ui"
)

func TestFrom_Unresolved(t *testing.T) {
	s := From(ui.Pending, resolver.State{Available: true}, false, 0, 7, 2)

	if s.UI != UIPending || s.Resolved != 0 || s.Available != 0 || s.Source != 0 {
		t.Fatalf("unresolved snapshot leaked state: %+v", s)
	}
	if s.SecondsPending != 7 || s.ProbeAttempts != 2 {
		t.Fatalf("counters not copied: %+v", s)
	}
}

func TestFrom_ResolvedDemoted(t *testing.T) {
	st := resolver.State{Available: true, Source: signal.SourceProbe}
	s := From(ui.OfflineOnly, st, true, 2, 0, 3)

	if s.UI != UIOffline || s.Resolved != 1 || s.Available != 1 || s.Demoted != 2 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.Source != uint16(signal.SourceProbe) {
		t.Fatalf("source code mismatch: %d", s.Source)
	}
}

func TestFrom_CountersSaturate(t *testing.T) {
	s := From(ui.Pending, resolver.State{}, false, 0, 1<<20, -1)
	if s.SecondsPending != MaxCounter {
		t.Fatalf("seconds_pending must saturate, got %d", s.SecondsPending)
	}
	if s.ProbeAttempts != 0 {
		t.Fatalf("negative attempts must clamp to 0, got %d", s.ProbeAttempts)
	}
}

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{UI: UIChat, Resolved: 1, Available: 1, Source: 2, Demoted: 0, SecondsPending: 4, ProbeAttempts: 5})

	if len(regs) != SlotsPerBlock {
		t.Fatalf("expected %d regs, got %d", SlotsPerBlock, len(regs))
	}
	want := map[int]uint16{
		SlotUIState:        UIChat,
		SlotResolved:       1,
		SlotAvailable:      1,
		SlotSource:         2,
		SlotSecondsPending: 4,
		SlotProbeAttempts:  5,
	}
	for slot, v := range want {
		if regs[slot] != v {
			t.Fatalf("slot %d = %d want %d", slot, regs[slot], v)
		}
	}
	for i := SlotReservedStart; i <= SlotReservedEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("reserved slot %d not zero", i)
		}
	}
}
