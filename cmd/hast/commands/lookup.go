package commands

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/model"
)

// hashEntry is one output line of lookup --names.
type hashEntry struct {
	Hash    string       `json:"hash"`
	Reports []model.Info `json:"reports"`
	Names   []string     `json:"names"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	var names bool

	cmd := &cobra.Command{
		Use:   "lookup HASH...",
		Short: "Query a working directory offline",
		Long: `Recover the index from the working directory and print every report
containing one of the given hashes, one JSON object per line.

With --names, print one line per known hash with its reports and object names.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}

			storage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}

			if names {
				return printHashEntries(cmd.OutOrStdout(), storage, args)
			}

			resp, err := storage.Lookup(cmd.Context(), model.LookupRequest{Hashes: args})
			if err != nil {
				return err
			}

			enc := gojson.NewEncoder(cmd.OutOrStdout())
			for _, info := range resp.Records {
				if err := enc.Encode(info); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&names, "names", false, "also print the object names recorded for each hash")

	return cmd
}

func printHashEntries(w io.Writer, storage *hast.Storage, hashes []string) error {
	enc := gojson.NewEncoder(w)
	found := false

	for _, h := range hashes {
		infos, names, ok := storage.LookupHash(h)
		if !ok {
			continue
		}
		found = true
		if err := enc.Encode(hashEntry{Hash: h, Reports: infos, Names: names}); err != nil {
			return err
		}
	}

	if !found {
		return hast.ErrNotFound
	}
	return nil
}
