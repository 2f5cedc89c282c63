package world

import "testing"

func TestPhaseFromProgress(t *testing.T) {
	tests := []struct {
		progress int
		want     string
	}{
		{progress: -3, want: PhaseWhispers},
		{progress: 0, want: PhaseWhispers},
		{progress: 24, want: PhaseWhispers},
		{progress: 25, want: PhaseGripTightens},
		{progress: 59, want: PhaseGripTightens},
		{progress: 60, want: PhaseMapShrinks},
		{progress: 99, want: PhaseMapShrinks},
		{progress: 100, want: PhaseRuin},
		{progress: 250, want: PhaseRuin},
	}
	for _, tt := range tests {
		if got := PhaseFromProgress(tt.progress); got != tt.want {
			t.Fatalf("progress %d: expected %s, got %s", tt.progress, tt.want, got)
		}
	}
}

func TestValidPhase(t *testing.T) {
	for _, phase := range []string{PhaseWhispers, PhaseGripTightens, PhaseMapShrinks, PhaseRuin} {
		if !ValidPhase(phase) {
			t.Fatalf("expected %s to be valid", phase)
		}
	}
	if ValidPhase("eclipse") {
		t.Fatal("expected unknown phase to be invalid")
	}
}
