package common

import (
	"github.com/google/uuid"
)

// pointNamespace is the fixed namespace for deterministic point IDs.
// Changing it would re-key every stored point, so it is frozen.
var pointNamespace = uuid.MustParse("8a9d93c4-41a4-4f7e-9c38-2d6ad52f1b07")

// DeterministicPointID derives a stable UUID from chunk content plus its
// canonical metadata string. Identical content and metadata always map to
// the same ID, which makes repeated ingestion an upsert rather than a
// duplicate insert.
func DeterministicPointID(content, metadata string) string {
	return uuid.NewSHA1(pointNamespace, []byte(content+metadata)).String()
}
