package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// --- 1. Error Reporting ---

// ShowError prints a formatted error box without exiting.
func ShowError(context string, err error) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🚨 BVF ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// --- 2. Frame Files ---

// DefaultFramePattern names frames frame1.png, frame2.png, ...
const DefaultFramePattern = "frame%d.png"

// FramePath builds the path of frame n (1-based) inside dir.
func FramePath(dir, pattern string, n int) string {
	return filepath.Join(dir, fmt.Sprintf(pattern, n))
}

// ValidatePattern checks that pattern formats exactly one integer.
func ValidatePattern(pattern string) error {
	if strings.Count(pattern, "%") != 1 || !strings.Contains(pattern, "d") {
		return fmt.Errorf("pattern %q must contain exactly one integer verb such as %%d or %%04d", pattern)
	}
	if strings.Contains(fmt.Sprintf(pattern, 1), "%!") {
		return fmt.Errorf("pattern %q is not a valid integer format", pattern)
	}
	return nil
}

// --- 3. Output Identity ---

// DigestFile returns the hex SHA-256 of the file at path and its size.
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
