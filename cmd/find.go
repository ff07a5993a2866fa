package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kizza7984/bvf-encode/internal/store"
	"github.com/kizza7984/bvf-encode/internal/utils"
	"github.com/spf13/cobra"
)

var findID string

var findCmd = &cobra.Command{
	Use:         "find [file.bvf]",
	Short:       "Look up a recorded conversion by output file or by id",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{requiresDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if findID != "" {
			return runFindByID(cmd, findID)
		}
		if len(args) == 0 {
			return errors.New("find needs a BVF file or --id")
		}
		return runFind(cmd, args[0])
	},
}

func init() {
	findCmd.Flags().StringVar(&findID, "id", "", "Show the conversion with this id instead of hashing a file")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %w", err)
	}

	digest, _, err := utils.DigestFile(path)
	if err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	fmt.Fprintln(os.Stderr, "🗄️  Searching catalog...")
	matches, err := DB.FindByDigest(cmd.Context(), digest)
	if err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("❌ No recorded conversion produced this file.")
		return nil
	}
	return printEncodings(matches)
}

func runFindByID(cmd *cobra.Command, id string) error {
	e, ok, err := DB.GetEncoding(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("catalog lookup failed: %w", err)
	}
	if !ok {
		fmt.Printf("❌ No conversion with id %s.\n", id)
		return nil
	}
	return printEncodings([]store.Encoding{e})
}

func printEncodings(encodings []store.Encoding) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tINPUT\tOUTPUT\tFPS\tFRAMES\tDIGEST\tENCODED")
	fmt.Fprintln(w, "--\t-----\t------\t---\t------\t------\t-------")
	for _, e := range encodings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.InputDir, e.OutputPath, e.FrameRate, e.FrameCount, e.Digest[:12],
			e.EncodedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
