package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iPoetDev/browsechat-sub001/internal/ingest"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Parse conversation logs and summarize their turns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st := newStore(cfg)

		pool := ingest.NewPool(st, int64(cfg.MaxConcurrent))
		results := pool.IngestAll(context.Background(), args)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSEGMENTS\tPARTICIPANTS\tKEYWORDS\tLENGTH\tSTATUS")
		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", res.Path, res.Err)
				continue
			}
			md := res.Sequence.Metadata
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\tok\n",
				res.Path,
				res.Sequence.TotalSegments,
				strings.Join(md.Participants, ","),
				strings.Join(md.Keywords, ","),
				md.Length,
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}
