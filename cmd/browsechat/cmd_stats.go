package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iPoetDev/browsechat-sub001/internal/ingest"
	"github.com/iPoetDev/browsechat-sub001/internal/metadata"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <file>...",
	Short: "Show aggregate metadata and token counts per log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st := newStore(cfg)

		counter, err := metadata.NewTokenCounter(cfg.TokenModel)
		if err != nil {
			return fmt.Errorf("create token counter: %w", err)
		}

		pool := ingest.NewPool(st, int64(cfg.MaxConcurrent))
		results := pool.IngestAll(context.Background(), args)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSEGMENTS\tPARTICIPANTS\tLENGTH\tTOKENS\tWINDOW")
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", res.Path, res.Err)
				continue
			}
			md := res.Sequence.Metadata
			window := "-"
			if md.StartTime != nil && md.EndTime != nil {
				window = fmt.Sprintf("%s .. %s",
					md.StartTime.Format("2006-01-02 15:04"),
					md.EndTime.Format("2006-01-02 15:04"),
				)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\n",
				res.Path,
				res.Sequence.TotalSegments,
				strings.Join(md.Participants, ","),
				md.Length,
				counter.CountSegments(res.Sequence.Segments),
				window,
			)
		}
		return w.Flush()
	},
}
