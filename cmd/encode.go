package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kizza7984/bvf-encode/internal/bvf"
	"github.com/kizza7984/bvf-encode/internal/runs"
	"github.com/kizza7984/bvf-encode/internal/store"
	"github.com/kizza7984/bvf-encode/internal/types"
	"github.com/kizza7984/bvf-encode/internal/utils"
	"github.com/kizza7984/bvf-encode/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultOutput = "output.bvf"

// requiredEncodeFlags define the stream header and have no sensible default.
var requiredEncodeFlags = []string{"frame-rate", "frame-count", "horizontal-resolution", "vertical-resolution"}

var encodeOpts Options

var encodeCmd = &cobra.Command{
	Use:   "encode <input_directory>",
	Short: "Encode frame1.png ... frameN.png into a BVF stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := requireFlags(cmd.Flags(), requiredEncodeFlags...); err != nil {
			return err
		}
		opts := encodeOpts
		opts.InputDir = args[0]
		return runEncode(cmd.Context(), opts)
	},
}

func init() {
	// -h is taken by --horizontal-resolution, so help gets the long form only.
	encodeCmd.Flags().Bool("help", false, "help for encode")
	encodeCmd.Flags().StringVarP(&encodeOpts.OutputPath, "output", "o", defaultOutput, "Output file name")
	encodeCmd.Flags().Uint8VarP(&encodeOpts.FrameRate, "frame-rate", "r", 0, "Input video frame rate")
	encodeCmd.Flags().Uint32VarP(&encodeOpts.FrameCount, "frame-count", "c", 0, "Number of frames in the input video")
	encodeCmd.Flags().Uint8VarP(&encodeOpts.HorizontalResolution, "horizontal-resolution", "h", 0, "Input video horizontal resolution")
	encodeCmd.Flags().Uint8VarP(&encodeOpts.VerticalResolution, "vertical-resolution", "v", 0, "Input video vertical resolution")
	encodeCmd.Flags().StringVar(&encodeOpts.FramePattern, "pattern", utils.DefaultFramePattern, "Frame file name pattern inside the input directory")
	encodeCmd.Flags().IntVarP(&encodeOpts.NumWorkers, "workers", "w", 1, "Number of parallel extraction workers")
	encodeCmd.Flags().BoolVar(&encodeOpts.KeepPartial, "keep-partial", false, "Keep the partially written output file when encoding fails")
	encodeCmd.Flags().BoolVarP(&encodeOpts.Quiet, "quiet", "q", false, "Hide the progress bar")

	// Unparsable or out-of-range numbers are configuration errors.
	encodeCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", types.ErrConfiguration, err)
	})
	rootCmd.AddCommand(encodeCmd)
}

// Metadata returns the stream header described by the options.
func (o Options) Metadata() bvf.Metadata {
	return bvf.Metadata{
		FrameRate:            o.FrameRate,
		FrameCount:           o.FrameCount,
		HorizontalResolution: o.HorizontalResolution,
		VerticalResolution:   o.VerticalResolution,
	}
}

// frameResult wraps the output from a worker to be sent to the aggregator
type frameResult struct {
	Index int
	Frame runs.Frame
}

// encodeSummary is what a successful run reports and records.
type encodeSummary struct {
	Frames  uint32
	Vectors int64
	Bytes   int64
}

// runEncode orchestrates the conversion: sink creation, worker pool, ordered
// commit to the encoder and the optional catalog record.
func runEncode(ctx context.Context, opts Options) (err error) {
	if err := validateEncodeFlags(&opts); err != nil {
		return err
	}
	meta := opts.Metadata()

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w: %w", types.ErrSinkWrite, err)
	}
	defer func() {
		if err == nil {
			return
		}
		out.Close()
		if !opts.KeepPartial {
			os.Remove(opts.OutputPath)
		}
	}()

	fmt.Fprintf(os.Stderr, "📼 Encoding %d frames (%dx%d @ %d fps) from %s\n",
		meta.FrameCount, meta.HorizontalResolution, meta.VerticalResolution, meta.FrameRate, opts.InputDir)

	sink := bufio.NewWriter(out)
	enc := bvf.NewEncoder(sink, meta)
	if err := enc.WriteHeader(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	summary, err := encodeFrames(ctx, enc, opts)
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	if err := sink.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w: %w", types.ErrSinkWrite, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("incomplete stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w: %w", types.ErrSinkWrite, err)
	}

	fmt.Fprintf(os.Stderr, "\n🏁 Encode Complete. %d frames, %d vectors, %d bytes -> %s\n",
		summary.Frames, summary.Vectors, summary.Bytes, opts.OutputPath)

	if DB != nil {
		if err := recordEncoding(ctx, DB, opts, summary); err != nil {
			// The stream itself is complete; a catalog failure doesn't invalidate it.
			utils.ShowError("Failed to record encoding in catalog", err)
		}
	}
	return nil
}

// encodeFrames fans frame extraction out to opts.NumWorkers workers and commits
// the results to enc strictly in ascending frame order.
func encodeFrames(ctx context.Context, enc *bvf.Encoder, opts Options) (encodeSummary, error) {
	// Cancelling on return stops the producer and any worker still running.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var summary encodeSummary
	total := int(opts.FrameCount)

	taskChan := make(chan types.FrameTask, opts.NumWorkers)
	resultsChan := make(chan frameResult, opts.NumWorkers*2)
	errChan := make(chan error, opts.NumWorkers)
	var wg sync.WaitGroup

	cfg := worker.ExtractConfig{
		Width:  int(opts.HorizontalResolution),
		Height: int(opts.VerticalResolution),
	}
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := worker.NewFrameWorker(id, cfg)
			for task := range taskChan {
				frame, err := w.ProcessFrame(task)
				if err != nil {
					select {
					case errChan <- err:
					default:
					}
					return
				}
				select {
				case resultsChan <- frameResult{Index: task.Index, Frame: frame}:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		defer close(taskChan)
		for n := 1; n <= total; n++ {
			task := types.FrameTask{Index: n, Path: utils.FramePath(opts.InputDir, opts.FramePattern, n)}
			select {
			case taskChan <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	bar := progressbar.NewOptions64(int64(total),
		progressbar.OptionSetDescription("🎞️  Encoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(!opts.Quiet),
	)

	// Buffer for re-ordering frames (Worker 2 might finish before Worker 1)
	buffer := make(map[int]frameResult)
	nextFrame := 1

	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		case err := <-errChan:
			return summary, err
		case res, ok := <-resultsChan:
			if !ok {
				goto Flush
			}
			buffer[res.Index] = res

			for {
				frame, ok := buffer[nextFrame]
				if !ok {
					break
				}
				delete(buffer, nextFrame)

				if err := enc.WriteFrame(frame.Frame); err != nil {
					return summary, fmt.Errorf("frame %d: %w", nextFrame, err)
				}
				summary.Vectors += int64(frame.Frame.VectorCount())
				bar.Add(1)
				nextFrame++
			}
		}
	}

Flush:
	// A worker may have failed after the last result was delivered.
	select {
	case err := <-errChan:
		return summary, err
	default:
	}
	if nextFrame != total+1 {
		return summary, fmt.Errorf("frame %d was never produced", nextFrame)
	}

	bar.Finish()
	summary.Frames = enc.FramesWritten()
	summary.Bytes = enc.BytesWritten()
	return summary, nil
}

func recordEncoding(ctx context.Context, db *store.Store, opts Options, summary encodeSummary) error {
	digest, size, err := utils.DigestFile(opts.OutputPath)
	if err != nil {
		return err
	}
	return db.RecordEncoding(ctx, store.Encoding{
		ID:                   uuid.NewString(),
		InputDir:             opts.InputDir,
		OutputPath:           opts.OutputPath,
		FrameRate:            int(opts.FrameRate),
		FrameCount:           int64(opts.FrameCount),
		HorizontalResolution: int(opts.HorizontalResolution),
		VerticalResolution:   int(opts.VerticalResolution),
		VectorCount:          summary.Vectors,
		ByteSize:             size,
		Digest:               digest,
	})
}

// requireFlags reports every named flag that was not given on the command line.
func requireFlags(fs *pflag.FlagSet, names ...string) error {
	var missing []string
	for _, name := range names {
		if !fs.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required flag(s) %s not set", types.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// validateEncodeFlags ensures all CLI arguments are valid before any output is created.
func validateEncodeFlags(opts *Options) error {
	info, err := os.Stat(opts.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: input directory %s does not exist", types.ErrConfiguration, opts.InputDir)
		}
		return fmt.Errorf("%w: unable to access input directory: %w", types.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: input path %s is not a directory", types.ErrConfiguration, opts.InputDir)
	}
	if opts.OutputPath == "" {
		opts.OutputPath = defaultOutput
	}
	if info, err := os.Stat(opts.OutputPath); err == nil && info.IsDir() {
		return fmt.Errorf("%w: output path %s is a directory", types.ErrConfiguration, opts.OutputPath)
	}
	if opts.FramePattern == "" {
		opts.FramePattern = utils.DefaultFramePattern
	}
	if err := utils.ValidatePattern(opts.FramePattern); err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfiguration, err)
	}
	if opts.NumWorkers < 1 {
		opts.NumWorkers = 1
	}
	return nil
}
