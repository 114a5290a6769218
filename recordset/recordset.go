package recordset

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/hast/internal/hash"
	"github.com/hupe1980/hast/internal/intern"
	"github.com/hupe1980/hast/model"
)

// RecordSet is the reverse index from content hashes to reports and object
// names.
type RecordSet struct {
	reports map[uint64]model.Info

	names  *intern.Table
	hashes *intern.Table

	hashToName   map[uint64]*roaring64.Bitmap
	hashToReport map[uint64]*roaring64.Bitmap

	logger *slog.Logger
}

// Option configures a RecordSet.
type Option func(*RecordSet)

// WithLogger sets the logger. A nil logger keeps the default, which
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(rs *RecordSet) {
		if l != nil {
			rs.logger = l
		}
	}
}

// New returns an empty RecordSet.
func New(opts ...Option) *RecordSet {
	rs := &RecordSet{
		reports:      make(map[uint64]model.Info),
		names:        intern.New(),
		hashes:       intern.New(),
		hashToName:   make(map[uint64]*roaring64.Bitmap),
		hashToReport: make(map[uint64]*roaring64.Bitmap),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rs)
		}
	}
	return rs
}

func link(m map[uint64]*roaring64.Bitmap, key, value uint64) {
	b, ok := m[key]
	if !ok {
		b = roaring64.New()
		m[key] = b
	}
	b.Add(value)
}

// Insert indexes a report. It returns false and changes nothing when a report
// with the same ID is already present.
func (rs *RecordSet) Insert(info model.Info, records []model.Record) bool {
	reportID := hash.ID(info.ID)

	if _, ok := rs.reports[reportID]; ok {
		rs.logger.Warn("skip report, already present", "report", info.ID)
		return false
	}

	rs.logger.Info("insert report", "report", info.ID, "records", len(records))

	for _, r := range records {
		nameID, nameCollided := rs.names.Intern(r.Name)
		hashID, hashCollided := rs.hashes.Intern(r.Hash)
		if nameCollided || hashCollided {
			rs.logger.Warn("identifier collision", "report", info.ID, "name", r.Name, "hash", r.Hash)
		}

		link(rs.hashToReport, hashID, reportID)
		link(rs.hashToName, hashID, nameID)
	}
	rs.reports[reportID] = info

	stats := rs.Stats()
	rs.logger.Debug("index size", "reports", stats.Reports, "hashes", stats.Hashes, "names", stats.Names)

	return true
}

// Contains reports whether a report with the given ID has been inserted.
func (rs *RecordSet) Contains(reportID string) bool {
	_, ok := rs.reports[hash.ID(reportID)]
	return ok
}

// Lookup returns the reports and object names linked to contentHash. ok is
// false when the hash was never inserted. The order of both slices is
// unspecified.
func (rs *RecordSet) Lookup(contentHash string) (infos []model.Info, names []string, ok bool) {
	hashID := hash.ID(contentHash)

	reports, ok := rs.hashToReport[hashID]
	if !ok {
		return nil, nil, false
	}

	infos = make([]model.Info, 0, reports.GetCardinality())
	it := reports.Iterator()
	for it.HasNext() {
		if info, found := rs.reports[it.Next()]; found {
			infos = append(infos, info)
		}
	}

	if nameIDs, found := rs.hashToName[hashID]; found {
		names = make([]string, 0, nameIDs.GetCardinality())
		it := nameIDs.Iterator()
		for it.HasNext() {
			if name, found := rs.names.Resolve(it.Next()); found {
				names = append(names, name)
			}
		}
	}

	return infos, names, true
}

// Stats holds the sizes of the index.
type Stats struct {
	Reports int `json:"reports"`
	Hashes  int `json:"hashes"`
	Names   int `json:"names"`
}

// Stats returns the number of reports, distinct hashes and distinct names.
func (rs *RecordSet) Stats() Stats {
	return Stats{
		Reports: len(rs.reports),
		Hashes:  rs.hashes.Len(),
		Names:   rs.names.Len(),
	}
}
