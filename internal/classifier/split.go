package classifier

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// InTest reports whether a cascade belongs to the test split. The decision
// depends only on the cascade id and seed, so every k places a cascade on
// the same side.
func InTest(id int64, seed uint64, testFraction float64) bool {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], uint64(id))
	binary.LittleEndian.PutUint64(b[8:], seed)
	h := xxhash.Sum64(b[:])
	return float64(h>>11)/float64(1<<53) < testFraction
}

// Split partitions samples by cascade id.
func Split(samples []Sample, seed uint64, testFraction float64) (train, test []Sample) {
	for _, s := range samples {
		if InTest(s.ID, seed, testFraction) {
			test = append(test, s)
		} else {
			train = append(train, s)
		}
	}
	return train, test
}
