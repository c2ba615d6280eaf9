package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mnistseq"
)

var previewCmd = &cobra.Command{
	Use:   "preview <dataset.npz> <out.png>",
	Short: "Render a contact sheet of samples from a saved dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		split, _ := cmd.Flags().GetString("split")
		rows, _ := cmd.Flags().GetInt("rows")
		cols, _ := cmd.Flags().GetInt("cols")

		ds, err := loadSplit(args[0], split)
		if err != nil {
			return err
		}
		if err := writePreview(ds, args[1], rows, cols); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <dataset.npz>",
	Short: "Print digit-class and sequence-length histograms of a saved dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		splits, err := mnistseq.LoadSplits(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printStats(out, "train", splits.Train)
		printStats(out, "test", splits.Test)
		printStats(out, "valid", splits.Valid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd, statsCmd)

	previewCmd.Flags().String("split", "train", "Partition to preview: train, test or valid")
	previewCmd.Flags().Int("rows", 3, "Rows in the contact sheet")
	previewCmd.Flags().Int("cols", 8, "Columns in the contact sheet")
}

func loadSplit(path, name string) (*mnistseq.Dataset, error) {
	splits, err := mnistseq.LoadSplits(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(name) {
	case "train":
		return splits.Train, nil
	case "test":
		return splits.Test, nil
	case "valid":
		return splits.Valid, nil
	default:
		return nil, fmt.Errorf("unknown split %q", name)
	}
}

func printStats(w io.Writer, name string, ds *mnistseq.Dataset) {
	s := mnistseq.ComputeStats(ds)
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%s: %d samples, %dx%d, %d digit slots\n", name, ds.N, ds.Width, ds.Height, ds.MaxDigits)
	p.Fprintf(w, "  classes:")
	for v, n := range s.Classes {
		label := fmt.Sprint(v)
		if v == mnistseq.Sentinel {
			label = "empty"
		}
		p.Fprintf(w, " %s=%d", label, n)
	}
	p.Fprintf(w, "\n  lengths:")
	for l, n := range s.Lengths[1:] {
		p.Fprintf(w, " %d=%d", l+1, n)
	}
	p.Fprintf(w, "\n")
}
