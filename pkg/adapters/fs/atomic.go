package fs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// writeFileAtomic writes data to filename via a temp file and rename, so
// readers never observe a partially written slot.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(filename, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", filename, err)
	}

	return nil
}
