package worker

import (
	"fmt"

	"github.com/kizza7984/bvf-encode/internal/runs"
	"github.com/kizza7984/bvf-encode/internal/source"
	"github.com/kizza7984/bvf-encode/internal/types"
)

// Loader opens the pixel source for a frame file.
type Loader func(path string) (runs.Source, error)

// OpenPNG is the default Loader.
func OpenPNG(path string) (runs.Source, error) {
	s, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExtractConfig holds the declared resolution every frame must match.
type ExtractConfig struct {
	Width  int
	Height int
	Load   Loader // defaults to OpenPNG
}

// FrameWorker loads frames and extracts their runs. Each worker is used by a
// single goroutine; frames are independent, so any number may run at once.
type FrameWorker struct {
	ID  int
	cfg ExtractConfig
}

func NewFrameWorker(id int, cfg ExtractConfig) *FrameWorker {
	if cfg.Load == nil {
		cfg.Load = OpenPNG
	}
	return &FrameWorker{ID: id, cfg: cfg}
}

// ProcessFrame loads task.Path, checks its size and returns its runs.
func (w *FrameWorker) ProcessFrame(task types.FrameTask) (runs.Frame, error) {
	src, err := w.cfg.Load(task.Path)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", task.Index, err)
	}
	frame, err := runs.ExtractSized(src, w.cfg.Width, w.cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("frame %d (%s): %w", task.Index, task.Path, err)
	}
	return frame, nil
}
