package engine

import (
	"bytes"

	"github.com/dgryski/go-farm"
)

// Fingerprint hashes the msgpack encoding of the state. Identical
// trees driven through identical event sequences produce identical
// fingerprint sequences, which is how the determinism guarantee is
// checked without comparing whole states.
func (s *State) Fingerprint() (uint64, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		return 0, err
	}
	return farm.Hash64(buf.Bytes()), nil
}
