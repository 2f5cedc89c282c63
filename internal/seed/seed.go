// Package seed derives deterministic RNG seeds from namespaced contexts.
//
// Every stochastic decision in the engine draws from a seed produced here,
// so identical inputs always reproduce identical outputs. A seed is the
// low 32 bits of the SHA-256 digest of a canonical JSON payload built from
// the namespace and the context map.
package seed

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// Derive computes a deterministic seed for the given namespace and context.
//
// # Determinism
//
// Derive is a pure function: the same namespace and an equal context map
// always yield the same seed, regardless of map insertion order or the
// process the call runs in. Context values are normalized before hashing
// (all integer widths collapse to int64, nested maps are key-sorted,
// unsupported types fall back to their fmt.Sprint form), so two calls that
// describe the same decision hash identically.
func Derive(namespace string, context map[string]any) int64 {
	payload := Serialize(namespace, context)
	sum := sha256.Sum256([]byte(payload))
	return int64(binary.BigEndian.Uint32(sum[28:]))
}

// Rand returns a pseudo-random source for a derived seed. It is the single
// sanctioned way to turn a seed into rolls, so every consumer observes the
// same stream for the same seed.
func Rand(value int64) *rand.Rand {
	return rand.New(rand.NewSource(value))
}

// Serialize renders the canonical JSON payload hashed by Derive. Exposed so
// replay tooling can record the exact bytes behind a decision.
func Serialize(namespace string, context map[string]any) string {
	payload := map[string]any{
		"namespace": namespace,
		"context":   canonicalize(context),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Only normalized values reach the encoder, so this cannot fail.
	if err := enc.Encode(payload); err != nil {
		panic(fmt.Sprintf("serialize seed payload: %v", err))
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// canonicalize normalizes a context value into the restricted tree that the
// JSON encoder renders deterministically: nil, bool, int64, finite float64,
// string, []any, and map[string]any. encoding/json sorts map keys, which
// gives the canonical ordering.
func canonicalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return canonicalFloat(float64(v))
	case float64:
		return canonicalFloat(v)
	case string:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalize(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case []int:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = int64(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = canonicalize(item)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}

// canonicalFloat keeps Derive total: non-finite floats are encoded by name
// instead of failing the hash.
func canonicalFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}
