package reference

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSeverityIndex(t *testing.T) {
	raw := []byte("biomes:\n  Frost-Fen Marsh: 80\n  ember_steppe: 30\n  out_of_range: 250\n")

	index, err := ParseSeverityIndex(raw)
	if err != nil {
		t.Fatalf("parse severity dataset: %v", err)
	}
	if got := index["frost_fen_marsh"]; got != 80 {
		t.Fatalf("expected normalized slug with severity 80, got %d", got)
	}
	if got := index["out_of_range"]; got != 100 {
		t.Fatalf("expected severity clamped to 100, got %d", got)
	}
}

func TestParseSeverityIndexMalformed(t *testing.T) {
	if _, err := ParseSeverityIndex([]byte("biomes: [not, a, map]")); err == nil {
		t.Fatal("expected error for malformed dataset")
	}
}

func TestPressureDefaults(t *testing.T) {
	var index SeverityIndex
	if got := index.Pressure("anything"); got != NeutralSeverity {
		t.Fatalf("expected neutral severity %d without a dataset, got %d", NeutralSeverity, got)
	}
}

func TestPressureFocusAndMean(t *testing.T) {
	index := SeverityIndex{"ashen_waste": 90, "ember_steppe": 30}

	if got := index.Pressure("Ashen Waste"); got != 90 {
		t.Fatalf("expected focus severity 90, got %d", got)
	}
	if got := index.Pressure("unknown_biome"); got != 60 {
		t.Fatalf("expected mean severity 60, got %d", got)
	}
	if got := index.Pressure(""); got != 60 {
		t.Fatalf("expected mean severity 60 for empty focus, got %d", got)
	}
}

func TestLoadSeverityIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "severity.yaml")
	if err := os.WriteFile(path, []byte("biomes:\n  mirror_coast: 55\n"), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	index, err := LoadSeverityIndex(path)
	if err != nil {
		t.Fatalf("load severity dataset: %v", err)
	}
	if got := index.Pressure("mirror_coast"); got != 55 {
		t.Fatalf("expected severity 55, got %d", got)
	}
}

func TestLoadSeverityIndexMissingFile(t *testing.T) {
	if _, err := LoadSeverityIndex(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Frost-Fen Marsh", want: "frost_fen_marsh"},
		{in: "  ember   steppe ", want: "ember_steppe"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeSlug(tt.in); got != tt.want {
			t.Fatalf("normalize %q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
