package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all conversions recorded in the catalog",
	Annotations: map[string]string{requiresDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runList(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command) error {
	encodings, err := DB.ListEncodings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list encodings: %w", err)
	}

	if len(encodings) == 0 {
		fmt.Println("No encodings found in catalog.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tOUTPUT\tFRAMES\tSIZE\tVECTORS\tBYTES\tENCODED")
	fmt.Fprintln(w, "--\t------\t------\t----\t-------\t-----\t-------")

	for _, e := range encodings {
		fmt.Fprintf(w, "%s\t%s\t%d\t%dx%d\t%d\t%d\t%s\n",
			e.ID[:8], e.OutputPath, e.FrameCount, e.HorizontalResolution, e.VerticalResolution,
			e.VectorCount, e.ByteSize, e.EncodedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
