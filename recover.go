package hast

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hast/codec"
	"github.com/hupe1980/hast/model"
)

// RecoveryReport summarizes the replay of persisted reports.
type RecoveryReport struct {
	// Loaded is the number of reports added to the index.
	Loaded int
	// Duplicates counts files whose report ID was already loaded from an
	// earlier file.
	Duplicates int
	// Skipped lists the files that could not be read or decoded.
	Skipped []*RecoveryError
	// Duration is the wall time of the replay.
	Duration time.Duration
}

type recoveredFile struct {
	req model.InsertRequest
	err error
}

// recoveryWindowFactor bounds how many decoded files are held at once, as a
// multiple of the recovery concurrency.
const recoveryWindowFactor = 4

// recover reads persisted files concurrently and inserts them into the index
// one by one, in the order the store listed them. Files are decoded in
// windows so at most a window of decoded reports is held in memory.
func (s *Storage) recover(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport
	start := time.Now()

	names, err := s.store.List(ctx, "")
	if err != nil {
		return report, fmt.Errorf("list persisted reports: %w", err)
	}

	window := s.recoveryConcurrency * recoveryWindowFactor
	files := make([]recoveredFile, min(window, len(names)))

	for lo := 0; lo < len(names); lo += window {
		batch := names[lo:min(lo+window, len(names))]
		if err := s.readWindow(ctx, batch, files[:len(batch)]); err != nil {
			return report, fmt.Errorf("recover: %w", err)
		}

		for i, name := range batch {
			f := files[i]
			files[i] = recoveredFile{}
			if f.err != nil {
				rerr := &RecoveryError{Name: name, cause: f.err}
				report.Skipped = append(report.Skipped, rerr)
				s.logger.LogSkippedFile(ctx, name, f.err)
				continue
			}
			if s.records.Insert(f.req.Info, f.req.Records) {
				report.Loaded++
			} else {
				report.Duplicates++
			}
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// readWindow decodes names into files, which must be the same length.
func (s *Storage) readWindow(ctx context.Context, names []string, files []recoveredFile) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.recoveryConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i].req, files[i].err = s.readReport(gctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Storage) readReport(ctx context.Context, name string) (model.InsertRequest, error) {
	var req model.InsertRequest

	data, err := s.store.Get(ctx, name)
	if err != nil {
		return req, err
	}
	if err := codec.Decode(s.codec, data, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
