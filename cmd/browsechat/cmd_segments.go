package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var segmentsFull bool

func init() {
	rootCmd.AddCommand(segmentsCmd)
	segmentsCmd.Flags().BoolVar(&segmentsFull, "full", false, "print full segment content")
}

var segmentsCmd = &cobra.Command{
	Use:   "segments <file>",
	Short: "List the turns of one conversation log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st := newStore(cfg)

		seq, err := st.Ingest(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("ingest %s: %w", args[0], err)
		}

		if len(seq.Segments) == 0 {
			fmt.Println("No segments found.")
			return nil
		}

		if segmentsFull {
			for _, seg := range seq.Segments {
				fmt.Fprintf(os.Stdout, "--- segment %d [%d, %d)\n%s\n", seg.Order, seg.StartIndex, seg.EndIndex, seg.Content)
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tSTART\tEND\tPARTICIPANTS\tPREVIEW")
		for _, seg := range seq.Segments {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
				seg.Order,
				seg.StartIndex,
				seg.EndIndex,
				strings.Join(seg.Metadata.Participants, ","),
				preview(seg.Content, 60),
			)
		}
		return w.Flush()
	},
}

// preview returns the first line of content truncated to max runes.
func preview(content string, max int) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return line
}
