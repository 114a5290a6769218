package hast

import (
	"context"
	"time"

	"github.com/hupe1980/hast/blobstore"
	"github.com/hupe1980/hast/codec"
	"github.com/hupe1980/hast/internal/hash"
	"github.com/hupe1980/hast/model"
	"github.com/hupe1980/hast/recordset"
)

// Storage couples the in-memory RecordSet with a store holding one file per
// report.
//
// Storage is not safe for concurrent use. Transports wrap it in a Guarded.
type Storage struct {
	records  *recordset.RecordSet
	store    blobstore.Store
	location string

	codec               codec.Codec
	compression         codec.Compression
	metrics             MetricsCollector
	logger              *Logger
	recoveryConcurrency int

	recovery RecoveryReport
}

// Open creates the backend if needed and replays every persisted report into
// a fresh index before returning.
//
// Files that cannot be read or decoded are logged and skipped; they are
// listed in Recovery().Skipped. Open fails only if the backend cannot be
// opened or listed, or if ctx ends during recovery.
func Open(ctx context.Context, backend Backend, optFns ...Option) (*Storage, error) {
	o := applyOptions(optFns)

	store, location, err := backend.open(ctx)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		records:             recordset.New(recordset.WithLogger(o.logger.Logger)),
		store:               store,
		location:            location,
		codec:               o.codec,
		compression:         o.compression,
		metrics:             o.metricsCollector,
		logger:              o.logger,
		recoveryConcurrency: o.recoveryConcurrency,
	}

	report, err := s.recover(ctx)
	s.logger.LogRecovery(ctx, report, err)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRecovery(report.Loaded, len(report.Skipped), report.Duration)
	s.recovery = report

	return s, nil
}

// FileName returns the name of the file that persists the report with the
// given ID: the decimal form of the ID's 64-bit identifier.
func FileName(reportID string) string {
	return hash.String(hash.ID(reportID))
}

// Location describes where report files are kept.
func (s *Storage) Location() string {
	return s.location
}

// Recovery returns the outcome of the replay performed by Open.
func (s *Storage) Recovery() RecoveryReport {
	return s.recovery
}

// Insert indexes a report and, the first time its ID is seen, writes it to
// the store. Inserting a known ID again is a no-op that returns nil.
//
// If the write fails the report stays indexed in memory and a *PersistError
// is returned; it will be missing after the next restart.
func (s *Storage) Insert(ctx context.Context, req model.InsertRequest) error {
	start := time.Now()

	if !s.records.Insert(req.Info, req.Records) {
		s.metrics.RecordDuplicate()
		s.logger.LogDuplicate(ctx, req.Info.ID)
		return nil
	}

	err := s.persist(ctx, req)
	s.metrics.RecordInsert(time.Since(start), err)
	s.logger.LogInsert(ctx, req.Info.ID, len(req.Records), err)

	return err
}

func (s *Storage) persist(ctx context.Context, req model.InsertRequest) error {
	name := FileName(req.Info.ID)
	start := time.Now()

	if req.Records == nil {
		req.Records = []model.Record{}
	}

	data, err := codec.Encode(s.codec, s.compression, req)
	if err == nil {
		err = s.store.Put(ctx, name, data)
	}

	s.metrics.RecordPersist(len(data), time.Since(start), err)
	s.logger.LogPersist(ctx, req.Info.ID, name, len(req.Records), err)

	if err != nil {
		return &PersistError{ReportID: req.Info.ID, Name: name, cause: err}
	}
	return nil
}

// Lookup returns every report containing at least one of the requested
// hashes, each report once. Unknown hashes are ignored. ErrNotFound is
// returned when nothing matches, including for an empty request.
//
// Reports are ordered by the first requested hash that matched them; the
// order within one hash is unspecified.
func (s *Storage) Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
	start := time.Now()

	seen := make(map[string]struct{})
	var infos []model.Info
	for _, h := range req.Hashes {
		matched, _, ok := s.records.Lookup(h)
		if !ok {
			continue
		}
		for _, info := range matched {
			if _, dup := seen[info.ID]; dup {
				continue
			}
			seen[info.ID] = struct{}{}
			infos = append(infos, info)
		}
	}

	s.metrics.RecordLookup(len(req.Hashes), len(infos), time.Since(start))
	s.logger.LogLookup(ctx, len(req.Hashes), len(infos))

	if len(infos) == 0 {
		return nil, ErrNotFound
	}
	return &model.LookupResponse{Records: infos}, nil
}

// LookupHash returns the reports and object names linked to a single hash.
// ok is false when the hash is unknown.
func (s *Storage) LookupHash(contentHash string) (infos []model.Info, names []string, ok bool) {
	return s.records.Lookup(contentHash)
}

// Contains reports whether a report with the given ID is indexed.
func (s *Storage) Contains(reportID string) bool {
	return s.records.Contains(reportID)
}

// Stats returns the sizes of the index.
func (s *Storage) Stats() recordset.Stats {
	return s.records.Stats()
}
