package hast

import (
	"context"
	"fmt"

	"github.com/hupe1980/hast/blobstore"
)

// Backend selects where a Storage keeps its report files.
type Backend interface {
	open(ctx context.Context) (blobstore.Store, string, error)
}

type localBackend struct {
	dir  string
	opts []blobstore.LocalOption
}

// Local keeps one file per report in dir, creating the directory if needed.
func Local(dir string, opts ...blobstore.LocalOption) Backend {
	return localBackend{dir: dir, opts: opts}
}

func (b localBackend) open(context.Context) (blobstore.Store, string, error) {
	store, err := blobstore.OpenLocalStore(b.dir, b.opts...)
	if err != nil {
		return nil, "", err
	}
	return store, b.dir, nil
}

type remoteBackend struct {
	store blobstore.Store
}

// Remote keeps report files in an existing store, such as an S3 bucket.
func Remote(store blobstore.Store) Backend {
	return remoteBackend{store: store}
}

func (b remoteBackend) open(context.Context) (blobstore.Store, string, error) {
	if b.store == nil {
		return nil, "", fmt.Errorf("hast: remote backend requires a store")
	}
	return b.store, fmt.Sprintf("%T", b.store), nil
}
