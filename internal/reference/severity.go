// Package reference loads the external reference datasets the engine
// consults but does not own.
//
// Reference data is advisory: a missing file, a malformed entry, or an
// unknown biome never fails a tick. Every lookup falls back to a neutral
// default instead.
package reference

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duskmere/worldengine/internal/errors"
)

// NeutralSeverity is the pressure reported when no dataset is available.
const NeutralSeverity = 50

// SeverityIndex maps biome slug to a severity score in [0, 100].
type SeverityIndex map[string]int

// severityDocument is the on-disk dataset shape.
type severityDocument struct {
	Biomes map[string]int `yaml:"biomes"`
}

// LoadSeverityIndex parses a biome severity dataset from a yaml file.
func LoadSeverityIndex(path string) (SeverityIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read severity dataset: %w", err)
	}
	return ParseSeverityIndex(raw)
}

// ParseSeverityIndex parses a biome severity dataset from yaml bytes.
// Slugs are normalized and scores clamped to [0, 100].
func ParseSeverityIndex(raw []byte) (SeverityIndex, error) {
	var doc severityDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.CodeSeverityIndexInvalid, "parse severity dataset", err)
	}
	index := make(SeverityIndex, len(doc.Biomes))
	for slug, score := range doc.Biomes {
		normalized := NormalizeSlug(slug)
		if normalized == "" {
			continue
		}
		index[normalized] = clamp(score)
	}
	return index, nil
}

// Pressure returns the severity for the focus biome, the rounded dataset
// mean when the focus is unknown, or NeutralSeverity when no dataset is
// loaded.
func (x SeverityIndex) Pressure(focus string) int {
	if len(x) == 0 {
		return NeutralSeverity
	}
	if slug := NormalizeSlug(focus); slug != "" {
		if score, ok := x[slug]; ok {
			return clamp(score)
		}
	}
	sum := 0
	for _, score := range x {
		sum += clamp(score)
	}
	mean := int(math.Round(float64(sum) / float64(len(x))))
	return clamp(mean)
}

// NormalizeSlug lowercases a biome name and joins its words with
// underscores, so "Frost-Fen Marsh" and "frost fen  marsh" address the
// same entry.
func NormalizeSlug(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, "-", " ")
	return strings.Join(strings.Fields(cleaned), "_")
}

func clamp(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
