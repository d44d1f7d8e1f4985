package mesh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash of the mesh covering IDs, positions,
// edge endpoints and face loops in slice order. Two snapshots with equal
// fingerprints produce identical lint reports.
func (m *Mesh) Fingerprint() uint64 {
	d := xxhash.New()
	if m == nil {
		return d.Sum64()
	}

	var buf [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = d.Write(buf[:])
	}
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}

	putInt(len(m.Vertices))
	for _, v := range m.Vertices {
		putInt(int(v.ID))
		putFloat(v.Position.X)
		putFloat(v.Position.Y)
		putFloat(v.Position.Z)
	}
	putInt(len(m.Edges))
	for _, e := range m.Edges {
		putInt(int(e.ID))
		putInt(int(e.V[0]))
		putInt(int(e.V[1]))
	}
	putInt(len(m.Faces))
	for _, f := range m.Faces {
		putInt(int(f.ID))
		putInt(len(f.Loop))
		for _, v := range f.Loop {
			putInt(int(v))
		}
	}
	return d.Sum64()
}
