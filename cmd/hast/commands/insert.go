package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/internal/payload"
	"github.com/hupe1980/hast/model"
)

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	var (
		id        string
		host      string
		timestamp string
	)

	cmd := &cobra.Command{
		Use:   "insert --id ID [FILE|-]",
		Short: "Add a listing to a working directory offline",
		Long: `Read "hash name" lines from FILE, or from stdin when FILE is "-" or
omitted, and insert them as one report. Inserting a known report ID is a no-op.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			records, err := payload.Read(in)
			if err != nil {
				return err
			}

			info := model.NewInfo(id)
			if cmd.Flags().Changed("host") {
				info = info.WithHost(host)
			}
			if cmd.Flags().Changed("timestamp") {
				info = info.WithTimestamp(timestamp)
			}

			storage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}

			if storage.Contains(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "report %q already present\n", id)
				return nil
			}

			if err := storage.Insert(cmd.Context(), model.InsertRequest{Info: info, Records: records}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "inserted report %q with %d record(s) as %s\n", id, len(records), hast.FileName(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "report ID")
	cmd.Flags().StringVar(&host, "host", "", "host the listing was taken on")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "time the listing was taken")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
