package runs

type scanState int

const (
	idle  scanState = iota // no start pending
	inRun                  // start pending, waiting for an end
)

// scanner is the per-scanline edge detector. Runs are only detected on a
// change between two observed pixels, so a run touching column 0 or the last
// column is synthesized explicitly.
type scanner struct {
	width  int
	state  scanState
	prevOn bool
	start  uint8
	line   Line
}

func (s *scanner) reset(width int) {
	s.width = width
	s.state = idle
	s.prevOn = false
	s.start = 0
	s.line = nil
}

func (s *scanner) begin(x uint8) {
	s.state = inRun
	s.start = x
}

func (s *scanner) step(x uint8, on bool) error {
	var end uint8
	ended := false

	if on != s.prevOn && x != 0 {
		if on {
			s.begin(x)
		} else {
			end, ended = x-1, true
		}
	}
	if x == 0 && on {
		s.begin(0)
	}
	if int(x)+1 == s.width && on {
		end, ended = x, true
	}

	if ended {
		if s.state != inRun {
			return ErrNoRunStart
		}
		s.line = append(s.line, Vector{Start: s.start, End: end})
		s.state = idle
	}

	s.prevOn = on
	return nil
}

func (s *scanner) finish() Line {
	if s.line == nil {
		return Line{}
	}
	return s.line
}
