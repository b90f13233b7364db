package sorter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// moveFile moves src to dst. Rename is tried first; when the destination is
// on a different filesystem the file is copied and the source removed.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy to destination: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to flush destination: %w", err)
	}

	if err := os.Remove(src); err != nil {
		// The copy stands; a stale source is better than a lost file.
		return fmt.Errorf("copied but failed to remove source: %w", err)
	}
	return nil
}

// uniqueDest returns path, or the first "name_N.ext" variant that does not
// exist yet. Moves never overwrite: two input files may share a base name
// (recursive snapshots), and overwriting would silently lose one.
func uniqueDest(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
