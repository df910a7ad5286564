//go:build !unix

package main

import (
	"fmt"
	"os"
)

// Best-effort fallback for non-Unix platforms.
// This does not capture runtime-level stderr output (like panics).
func redirectStdIO(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
