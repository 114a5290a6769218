package hast

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each first-time insert, including the
	// file write. err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordDuplicate is called when an insert is ignored because the
	// report already exists.
	RecordDuplicate()

	// RecordLookup is called after each lookup. matched is the number of
	// distinct reports returned.
	RecordLookup(hashes, matched int, duration time.Duration)

	// RecordPersist is called after each report file write.
	RecordPersist(bytes int, duration time.Duration, err error)

	// RecordRecovery is called once after startup recovery.
	RecordRecovery(loaded, skipped int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)       {}
func (NoopMetricsCollector) RecordDuplicate()                        {}
func (NoopMetricsCollector) RecordLookup(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordPersist(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRecovery(int, int, time.Duration)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	DuplicateCount   atomic.Int64
	LookupCount      atomic.Int64
	LookupHashes     atomic.Int64
	LookupMisses     atomic.Int64
	LookupTotalNanos atomic.Int64
	PersistBytes     atomic.Int64
	PersistErrors    atomic.Int64
	RecoveredCount   atomic.Int64
	RecoverySkipped  atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordDuplicate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDuplicate() {
	b.DuplicateCount.Add(1)
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hashes, matched int, duration time.Duration) {
	b.LookupCount.Add(1)
	b.LookupHashes.Add(int64(hashes))
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if matched == 0 {
		b.LookupMisses.Add(1)
	}
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(bytes int, _ time.Duration, err error) {
	if err != nil {
		b.PersistErrors.Add(1)
		return
	}
	b.PersistBytes.Add(int64(bytes))
}

// RecordRecovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecovery(loaded, skipped int, _ time.Duration) {
	b.RecoveredCount.Add(int64(loaded))
	b.RecoverySkipped.Add(int64(skipped))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		DuplicateCount:  b.DuplicateCount.Load(),
		LookupCount:     b.LookupCount.Load(),
		LookupHashes:    b.LookupHashes.Load(),
		LookupMisses:    b.LookupMisses.Load(),
		LookupAvgNanos:  avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		PersistBytes:    b.PersistBytes.Load(),
		PersistErrors:   b.PersistErrors.Load(),
		RecoveredCount:  b.RecoveredCount.Load(),
		RecoverySkipped: b.RecoverySkipped.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount     int64
	InsertErrors    int64
	InsertAvgNanos  int64
	DuplicateCount  int64
	LookupCount     int64
	LookupHashes    int64
	LookupMisses    int64
	LookupAvgNanos  int64
	PersistBytes    int64
	PersistErrors   int64
	RecoveredCount  int64
	RecoverySkipped int64
}
