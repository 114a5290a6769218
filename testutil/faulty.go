package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/hast/blobstore"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailPut  bool
	FailGet  bool
	FailList bool
	// Corrupt replaces the data returned by Get.
	Corrupt []byte
	Err     error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyStore is a blobstore.Store wrapper that can inject errors.
type FaultyStore struct {
	blobstore.Store

	mu      sync.Mutex
	rules   map[string]Fault // Name pattern -> Fault
	Default Fault            // Fallback
	puts    int
}

// NewFaultyStore wraps store.
func NewFaultyStore(store blobstore.Store) *FaultyStore {
	return &FaultyStore{
		Store: store,
		rules: make(map[string]Fault),
	}
}

// AddRule adds a fault injection rule for names containing pattern.
func (f *FaultyStore) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Puts returns the number of Put calls that reached the wrapped store.
func (f *FaultyStore) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *FaultyStore) fault(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := f.Default
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	return fault
}

// Put implements blobstore.Store.
func (f *FaultyStore) Put(ctx context.Context, name string, data []byte) error {
	if fault := f.fault(name); fault.FailPut {
		return fault.err()
	}
	f.mu.Lock()
	f.puts++
	f.mu.Unlock()
	return f.Store.Put(ctx, name, data)
}

// Get implements blobstore.Store.
func (f *FaultyStore) Get(ctx context.Context, name string) ([]byte, error) {
	fault := f.fault(name)
	if fault.FailGet {
		return nil, fault.err()
	}
	data, err := f.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if fault.Corrupt != nil {
		return append([]byte(nil), fault.Corrupt...), nil
	}
	return data, nil
}

// List implements blobstore.Store.
func (f *FaultyStore) List(ctx context.Context, prefix string) ([]string, error) {
	if fault := f.fault(prefix); fault.FailList {
		return nil, fault.err()
	}
	return f.Store.List(ctx, prefix)
}
