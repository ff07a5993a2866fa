package types

// FrameTask represents a single frame sent to a worker for extraction
type FrameTask struct {
	Index int    // 1-based frame number
	Path  string // PNG file holding the frame
}
