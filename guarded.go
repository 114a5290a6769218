package hast

import (
	"context"

	"github.com/hupe1980/hast/model"
	"github.com/hupe1980/hast/recordset"
)

// Guarded serializes access to a Storage through a Locker. Inserts take the
// exclusive lock, reads take the shared lock.
//
// Guarded is safe for concurrent use.
type Guarded struct {
	storage *Storage
	locker  Locker
}

// NewGuarded wraps s. A nil locker selects NewExclusiveLocker.
func NewGuarded(s *Storage, locker Locker) *Guarded {
	if locker == nil {
		locker = NewExclusiveLocker()
	}
	return &Guarded{storage: s, locker: locker}
}

// Insert calls Storage.Insert under the exclusive lock.
func (g *Guarded) Insert(ctx context.Context, req model.InsertRequest) error {
	release, err := g.locker.Exclusive(ctx)
	if err != nil {
		return err
	}
	defer release()

	return g.storage.Insert(ctx, req)
}

// Lookup calls Storage.Lookup under the shared lock.
func (g *Guarded) Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
	release, err := g.locker.Shared(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return g.storage.Lookup(ctx, req)
}

// Stats calls Storage.Stats under the shared lock.
func (g *Guarded) Stats(ctx context.Context) (recordset.Stats, error) {
	release, err := g.locker.Shared(ctx)
	if err != nil {
		return recordset.Stats{}, err
	}
	defer release()

	return g.storage.Stats(), nil
}
