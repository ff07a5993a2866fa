package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kizza7984/bvf-encode/internal/store"
	"github.com/kizza7984/bvf-encode/internal/utils"
	"github.com/spf13/cobra"
)

// Options holds the configuration of the encode command
type Options struct {
	InputDir             string
	OutputPath           string
	FramePattern         string
	FrameRate            uint8
	FrameCount           uint32
	HorizontalResolution uint8
	VerticalResolution   uint8
	NumWorkers           int
	KeepPartial          bool
	Quiet                bool
}

var (
	// DB is the catalog connection shared by subcommands. It stays nil when
	// the catalog is not configured and the command does not need it.
	DB *store.Store
	// dbURL is the connection string
	dbURL string
)

// Version is the application version.
const Version = "1.0.0"

const defaultDBURL = "postgres://localhost:5432/bvf"

// requiresDB marks commands that cannot run without the catalog.
const requiresDB = "requires-db"

var rootCmd = &cobra.Command{
	Use:     "bvf",
	Short:   "Black-and-white frame sequence to BVF run-length animation encoder",
	Version: Version,
	// Execute reports the error once, in the same box every command uses.
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		url := resolveDBURL()
		if url == "" {
			if _, ok := cmd.Annotations[requiresDB]; !ok {
				return nil
			}
			// Fallback to local default if no env vars are present
			url = defaultDBURL
		}

		var err error
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			DB.Close(context.Background())
			DB = nil
		}
	},
}

// resolveDBURL returns the --db flag, or a URL built from the POSTGRES_* environment, or "".
func resolveDBURL() string {
	if dbURL != "" {
		return dbURL
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	name := os.Getenv("POSTGRES_DB")
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.ShowError("Command failed", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the conversion catalog (default: "+defaultDBURL+" for catalog commands)")
}
