package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/hast/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Reports generates num reports with IDs "report-0" .. "report-<num-1>".
// Each has up to maxRecords records whose hashes are drawn from a pool of
// hashPool values, so hashes are shared between reports.
func (r *RNG) Reports(num, maxRecords, hashPool int) []model.InsertRequest {
	reports := make([]model.InsertRequest, num)
	for i := range reports {
		info := model.NewInfo(fmt.Sprintf("report-%d", i))
		if r.Intn(2) == 0 {
			info = info.WithHost(fmt.Sprintf("host-%d", r.Intn(4)))
		}

		n := r.Intn(maxRecords + 1)
		records := make([]model.Record, n)
		for j := range records {
			records[j] = model.Record{
				Name: fmt.Sprintf("/data/%d/file-%d", i, j),
				Hash: Hash(r.Intn(hashPool)),
			}
		}
		reports[i] = model.InsertRequest{Info: info, Records: records}
	}
	return reports
}

// Hash returns the i-th hash of the pool used by Reports.
func Hash(i int) string {
	return fmt.Sprintf("%040x", i)
}
