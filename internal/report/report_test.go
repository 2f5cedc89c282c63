package report

import (
	"context"
	"reflect"
	"testing"
)

func TestSimulateArcDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := SimulateArc(ctx, 42, 25, nil)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	b, err := SimulateArc(ctx, 42, 25, nil)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical summaries, got %+v vs %+v", a, b)
	}
}

func TestSimulateArcProducesActivity(t *testing.T) {
	s, err := SimulateArc(context.Background(), 42, 40, nil)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if s.Injections == 0 {
		t.Fatal("expected injections over 40 ticks at threat 7")
	}
	if s.TensionPeak == 0 {
		t.Fatal("expected tension to rise")
	}
	if s.QuestsCompleted == 0 {
		t.Fatal("expected the scripted character to finish contracts")
	}
	if s.SemanticBand == "" || s.Status == "" {
		t.Fatalf("expected scored summary, got %+v", s)
	}
}

func TestSemanticArcScoreBands(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		band    string
	}{
		{
			name: "rich arc scores strong",
			summary: Summary{
				SeedsResolved: 2, QuestsCompleted: 3, Injections: 6,
				DistinctKinds: 2, FinalTension: 56, SeedsActive: 0,
			},
			band: "strong",
		},
		{
			name:    "empty arc scores weak",
			summary: Summary{},
			band:    "weak",
		},
		{
			name: "crowded stage is penalized",
			summary: Summary{
				SeedsResolved: 2, QuestsCompleted: 1, FinalTension: 56,
				SeedsActive: 4,
			},
			band: "fragile",
		},
		{
			name: "same arc with a clear stage scores stable",
			summary: Summary{
				SeedsResolved: 2, QuestsCompleted: 1, FinalTension: 56,
			},
			band: "stable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, band := SemanticArcScore(tt.summary)
			if band != tt.band {
				t.Fatalf("expected band %s, got %s (score %d)", tt.band, band, score)
			}
			if score < 0 || score > 100 {
				t.Fatalf("score out of range: %d", score)
			}
		})
	}
}

func TestQualityStatus(t *testing.T) {
	if got := QualityStatus(nil); got != StatusPass {
		t.Fatalf("expected pass for no alerts, got %s", got)
	}
	if got := QualityStatus([]string{"tension_under_target"}); got != StatusWarn {
		t.Fatalf("expected warn, got %s", got)
	}
	if got := QualityStatus([]string{"semantic_below_target", "low_event_density"}); got != StatusFail {
		t.Fatalf("expected fail for compound signal, got %s", got)
	}
}

func TestQualityAlertsFlagMissedTargets(t *testing.T) {
	s := Summary{SemanticScore: 80, FinalTension: 90, SeedsActive: 2, QuestsCompleted: 2}
	alerts := QualityAlerts(s)
	want := map[string]bool{"tension_over_target": true, "too_many_active_seeds": true}
	if len(alerts) != len(want) {
		t.Fatalf("unexpected alerts %v", alerts)
	}
	for _, alert := range alerts {
		if !want[alert] {
			t.Fatalf("unexpected alert %s", alert)
		}
	}
}

func TestBatchGateVerdicts(t *testing.T) {
	pass := Summary{Status: StatusPass}
	warn := Summary{Status: StatusWarn}
	fail := Summary{Status: StatusFail}

	gate := BatchGate([]Summary{pass, pass, warn}, ResolveProfile("balanced"))
	if gate.Verdict != VerdictGo {
		t.Fatalf("expected go, got %+v", gate)
	}

	gate = BatchGate([]Summary{pass, fail, warn}, ResolveProfile("balanced"))
	if gate.Verdict != VerdictHold {
		t.Fatalf("expected hold with a failure, got %+v", gate)
	}
	found := false
	for _, blocker := range gate.Blockers {
		if blocker == "too_many_failures" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected too_many_failures blocker, got %v", gate.Blockers)
	}

	gate = BatchGate([]Summary{pass, fail, warn}, ResolveProfile("exploratory"))
	if gate.Verdict != VerdictHold {
		t.Fatalf("expected hold on pass rate, got %+v", gate)
	}
}

func TestResolveProfileFallsBack(t *testing.T) {
	if got := ResolveProfile("nonsense"); got.Name != "balanced" {
		t.Fatalf("expected balanced fallback, got %s", got.Name)
	}
}

func TestSeedListDeterministic(t *testing.T) {
	a := SeedList(42, 3)
	b := SeedList(42, 3)
	if len(a) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected deterministic seed list, diverged at %d", i)
		}
	}
	if a[0] == a[1] && a[1] == a[2] {
		t.Fatal("expected distinct derived seeds")
	}
}
