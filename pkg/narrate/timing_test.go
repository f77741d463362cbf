package narrate

import (
	"testing"
	"time"
)

func TestPlanCuesProportional(t *testing.T) {
	units := []string{"Hello. ", "World."} // 7 and 6 runes
	total := 2 * time.Second

	current, cues := planCues(units, total, 0)
	if current != 0 {
		t.Fatalf("current = %d, want 0", current)
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	want := time.Duration(int64(total) * 7 / 13)
	if cues[0].unit != 1 || cues[0].delay != want {
		t.Fatalf("cue = {unit %d, delay %v}, want {unit 1, delay %v}", cues[0].unit, cues[0].delay, want)
	}
}

func TestPlanCuesFinalUnitAbsorbsSlack(t *testing.T) {
	units := []string{"ab", "cd", "ef"}
	total := 1000*time.Millisecond + 1 // not divisible by 3

	_, cues := planCues(units, total, 0)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	// The last boundary is derived from cumulative rounding, never from
	// extrapolating past total.
	if last := cues[1].delay; last >= total {
		t.Fatalf("final boundary %v not before total %v", last, total)
	}
}

func TestPlanCuesResumeMidSegment(t *testing.T) {
	units := []string{"aaaa", "bbbb"} // boundary at total/2
	total := 2 * time.Second

	current, cues := planCues(units, total, 1500*time.Millisecond)
	if current != 1 {
		t.Fatalf("current = %d, want 1", current)
	}
	if len(cues) != 0 {
		t.Fatalf("got %d cues, want 0 past the last boundary", len(cues))
	}

	current, cues = planCues(units, total, 300*time.Millisecond)
	if current != 0 {
		t.Fatalf("current = %d, want 0", current)
	}
	if len(cues) != 1 || cues[0].delay != 700*time.Millisecond {
		t.Fatalf("cues = %+v, want one at 700ms", cues)
	}
}

func TestPlanCuesResumeOnBoundaryTieBreak(t *testing.T) {
	units := []string{"aaaa", "bbbb"}
	total := 2 * time.Second

	// Exactly on the boundary: the earlier unit is reported.
	current, cues := planCues(units, total, time.Second)
	if current != 0 {
		t.Fatalf("current = %d, want 0 (round down on exact boundary)", current)
	}
	if len(cues) != 1 || cues[0].delay != 0 {
		t.Fatalf("cues = %+v, want one immediate cue for unit 1", cues)
	}
}

func TestPlanCuesDegenerate(t *testing.T) {
	if current, cues := planCues(nil, time.Second, 0); current != -1 || cues != nil {
		t.Fatalf("nil units: got (%d, %v)", current, cues)
	}
	if current, cues := planCues([]string{"text."}, 0, 0); current != -1 || cues != nil {
		t.Fatalf("zero duration: got (%d, %v)", current, cues)
	}
}

func TestPlanCuesSingleUnit(t *testing.T) {
	current, cues := planCues([]string{"only sentence."}, 3*time.Second, 0)
	if current != 0 {
		t.Fatalf("current = %d, want 0", current)
	}
	if len(cues) != 0 {
		t.Fatalf("got %d cues, want 0", len(cues))
	}
}
