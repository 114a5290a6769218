// Package hast indexes file hashes reported by hosts and answers which
// reports contain a given hash.
//
// A report is identified by its ID and carries a list of records, each an
// object name with the content hash of that object. Storage keeps a reverse
// index from hashes to reports in memory and persists every report as one
// file named after the 64-bit identifier of the report ID. On Open, all
// persisted files are replayed into a fresh index.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	s, _ := hast.Open(ctx, hast.Local("/tmp/hast/storage"))
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("reports/"))
//	s, _ := hast.Open(ctx, hast.Remote(s3Store))
//
// # Insert and Lookup
//
//	err := s.Insert(ctx, model.InsertRequest{
//	    Info:    model.NewInfo("r1").WithHost("build-01"),
//	    Records: []model.Record{{Name: "a.bin", Hash: "h1"}},
//	})
//
//	resp, err := s.Lookup(ctx, model.LookupRequest{Hashes: []string{"h1"}})
//	if errors.Is(err, hast.ErrNotFound) {
//	    // no report contains h1
//	}
//
// Inserting a report ID that is already known is a no-op. If the report file
// cannot be written, the report stays indexed in memory and Insert returns a
// *PersistError.
//
// # Concurrency
//
// Storage itself is not safe for concurrent use. Guarded pairs it with a
// Locker:
//
//	g := hast.NewGuarded(s, hast.NewSharedLocker(8))
//
// NewExclusiveLocker runs every operation alone; NewSharedLocker lets lookups
// overlap while inserts stay exclusive.
//
// # Durability
//
// With hast.Local the report file is truncated and rewritten in place.
// blobstore.WithAtomicWrites writes a temporary file and renames it, and
// blobstore.WithSync flushes data before Insert returns:
//
//	s, _ := hast.Open(ctx, hast.Local(dir, blobstore.WithAtomicWrites(), blobstore.WithSync()))
package hast
