// Package random provides cryptographic seed generation helpers.
//
// It uses crypto/rand to mint the high-entropy world seed assigned once at
// bootstrap; every later stochastic decision is derived deterministically
// from that seed by the seed package.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewWorldSeed generates a random world seed using crypto/rand.
func NewWorldSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
