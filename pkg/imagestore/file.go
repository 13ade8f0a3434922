package imagestore

import (
	"bufio"
	"image"
	"os"

	"github.com/matzehuels/dotview/pkg/errors"
)

// Write encodes img in format and writes it to path, replacing any existing
// file. The format and image are validated before the file is touched, so
// invalid input never truncates an existing destination.
func Write(img image.Image, format, path string) (err error) {
	if !Supported(format) {
		return unsupported(format)
	}
	if img == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil image")
	}
	if path == "" {
		return errors.New(errors.ErrCodeIO, "missing destination filename")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeIO, cerr, "close %s", path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, img, format); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// WriteBytes writes already-encoded data to path, replacing any existing file.
// It is used for vector output, which is never decoded.
func WriteBytes(data []byte, path string) error {
	if path == "" {
		return errors.New(errors.ErrCodeIO, "missing destination filename")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// Read decodes the image stored at path.
func Read(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return Decode(data)
}
