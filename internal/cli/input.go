package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/dotview/pkg/errors"
)

// stdinName is the argument selecting standard input.
const stdinName = "-"

// readDescriptor returns the DOT text in path, or standard input for "-".
func readDescriptor(path string, stdin io.Reader) (string, error) {
	if path == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return string(data), nil
}

// defaultOutput derives an output path from the input path and format:
// graph.dot becomes graph.png. Standard input has no default.
func defaultOutput(input, format string) string {
	if input == stdinName || input == "" {
		return ""
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + format
}

// displayName is the name shown for an input in titles and messages.
func displayName(input string) string {
	if input == stdinName {
		return "stdin"
	}
	return filepath.Base(input)
}
