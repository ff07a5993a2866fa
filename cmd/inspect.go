package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kizza7984/bvf-encode/internal/bvf"
	"github.com/kizza7984/bvf-encode/internal/runs"
	"github.com/spf13/cobra"
)

var inspectFrames bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.bvf>",
	Short: "Print the header and vector statistics of a BVF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runInspect(args[0], inspectFrames, os.Stdout)
	},
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectFrames, "frames", "f", false, "Print per-frame vector counts")
	rootCmd.AddCommand(inspectCmd)
}

// runInspect streams the file frame by frame; only running totals are kept.
func runInspect(path string, perFrame bool, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if perFrame {
		fmt.Fprintf(out, "%-10s %s\n", "FRAME", "VECTORS")
		fmt.Fprintf(out, "%-10s %s\n", "-----", "-------")
	}

	var vectors, busiest int
	meta, err := bvf.Decode(f, func(i uint32, fr runs.Frame) error {
		n := fr.VectorCount()
		vectors += n
		busiest = max(busiest, n)
		if perFrame {
			fmt.Fprintf(out, "%-10d %d\n", i, n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if perFrame {
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Frame rate:   %d fps\n", meta.FrameRate)
	fmt.Fprintf(out, "Frame count:  %d\n", meta.FrameCount)
	fmt.Fprintf(out, "Resolution:   %dx%d\n", meta.HorizontalResolution, meta.VerticalResolution)
	fmt.Fprintf(out, "Vectors:      %d (max %d per frame)\n", vectors, busiest)
	return nil
}
