// Key and value encoding for audit entries.
//
// Keys are the bucket sequence number as big-endian uint64, so cursor order
// is insertion order. Values are JSON-serialized ports.Degradation.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/geonovis/geonovis/internal/ports"
)

// seqKey encodes a sequence number as an 8-byte big-endian key.
func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// keySeq is the inverse of seqKey.
func keySeq(k []byte) (uint64, error) {
	if len(k) != 8 {
		return 0, fmt.Errorf("bad key length %d", len(k))
	}
	return binary.BigEndian.Uint64(k), nil
}

func encodeEntry(d ports.Degradation) ([]byte, error) {
	return json.Marshal(d)
}

// decodeEntry copies out of v; bbolt slices are only valid within the tx.
func decodeEntry(v []byte) (ports.Degradation, error) {
	var d ports.Degradation
	if err := json.Unmarshal(v, &d); err != nil {
		return d, fmt.Errorf("unmarshal entry: %w", err)
	}
	return d, nil
}
