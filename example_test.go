package hast_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/blobstore"
	"github.com/hupe1980/hast/model"
)

// Example demonstrates inserting two reports that share a hash and looking
// the hash up.
func Example() {
	ctx := context.Background()

	s, err := hast.Open(ctx, hast.Remote(blobstore.NewMemoryStore()))
	if err != nil {
		log.Fatal(err)
	}

	_ = s.Insert(ctx, model.InsertRequest{
		Info:    model.NewInfo("r1"),
		Records: []model.Record{{Name: "a.bin", Hash: "h1"}},
	})
	_ = s.Insert(ctx, model.InsertRequest{
		Info:    model.NewInfo("r2"),
		Records: []model.Record{{Name: "b.bin", Hash: "h1"}},
	})

	resp, err := s.Lookup(ctx, model.LookupRequest{Hashes: []string{"h1"}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(resp.Records), "reports")

	_, err = s.Lookup(ctx, model.LookupRequest{Hashes: []string{"h2"}})
	fmt.Println(errors.Is(err, hast.ErrNotFound))
	// Output:
	// 2 reports
	// true
}

// Example_recovery demonstrates that reports survive a restart.
func Example_recovery() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "hast-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := hast.Open(ctx, hast.Local(dir))
	if err != nil {
		log.Fatal(err)
	}
	_ = s.Insert(ctx, model.InsertRequest{
		Info:    model.NewInfo("r1").WithHost("build-01"),
		Records: []model.Record{{Name: "/usr/bin/env", Hash: "h1"}},
	})

	restarted, err := hast.Open(ctx, hast.Local(dir))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("loaded:", restarted.Recovery().Loaded)

	infos, names, _ := restarted.LookupHash("h1")
	fmt.Println(infos[0].ID, *infos[0].Host, names[0])
	// Output:
	// loaded: 1
	// r1 build-01 /usr/bin/env
}

// Example_guarded demonstrates concurrent access through a Locker.
func Example_guarded() {
	ctx := context.Background()

	s, err := hast.Open(ctx, hast.Remote(blobstore.NewMemoryStore()))
	if err != nil {
		log.Fatal(err)
	}
	g := hast.NewGuarded(s, hast.NewSharedLocker(8))

	_ = g.Insert(ctx, model.InsertRequest{Info: model.NewInfo("r1")})
	stats, _ := g.Stats(ctx)
	fmt.Println("reports:", stats.Reports)
	// Output: reports: 1
}
