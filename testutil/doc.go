// Package testutil provides testing utilities for hast.
//
// This package is intended for use in tests only. It provides a seeded
// report generator and a store wrapper that injects faults.
//
// # Random Reports
//
//	rng := testutil.NewRNG(seed)
//	reports := rng.Reports(100, 8, 50) // 100 reports, up to 8 records, 50 distinct hashes
//
// # Fault Injection
//
//	store := testutil.NewFaultyStore(blobstore.NewMemoryStore())
//	store.AddRule("123", testutil.Fault{FailPut: true})
package testutil
