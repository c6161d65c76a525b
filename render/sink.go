package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ToFile renders through fn into a buffer and writes the whole payload to
// path in one blocking write, so a failed render leaves no partial file.
// Console echo is the caller's concern; it is suppressed on this path.
func ToFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dump to %s: %w", path, err)
	}
	return nil
}
