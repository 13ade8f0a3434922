package imagestore

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/dotview/pkg/errors"
)

// DefaultFormat is used by [Encode] and [Write] when no format is given.
const DefaultFormat = "png"

// encoder writes img to w in one specific format.
type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	"png": png.Encode,
	"jpeg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	},
	"gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	"bmp": bmp.Encode,
	"tiff": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

// aliases maps alternative spellings to canonical format names.
var aliases = map[string]string{
	"jpg": "jpeg",
	"tif": "tiff",
}

// Formats returns the names of all encodable formats, sorted.
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NormalizeFormat lowercases format, resolves aliases and applies the default.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		return DefaultFormat
	}
	if canonical, ok := aliases[f]; ok {
		return canonical
	}
	return f
}

// FormatFromPath infers a format from the extension of path.
// It returns "" when the extension is not an encodable format.
func FormatFromPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	f := NormalizeFormat(ext)
	if _, ok := encoders[f]; !ok {
		return ""
	}
	return f
}

// Supported reports whether format can be encoded.
func Supported(format string) bool {
	_, ok := encoders[NormalizeFormat(format)]
	return ok
}

// Decode decodes raw bytes in any registered raster format.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDecode, "no image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %d bytes", len(data))
	}
	return img, nil
}

// DecodeConfig reports the format and dimensions of data without decoding
// the pixel buffer.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", errors.Wrap(errors.ErrCodeDecode, err, "decode header of %d bytes", len(data))
	}
	return cfg, format, nil
}

// Encode writes img to w in format.
func Encode(w io.Writer, img image.Image, format string) error {
	f := NormalizeFormat(format)
	enc, ok := encoders[f]
	if !ok {
		return unsupported(format)
	}
	if img == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil image")
	}
	if err := enc(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", f)
	}
	return nil
}

func unsupported(format string) error {
	return errors.New(errors.ErrCodeUnsupported, "unsupported image format %q (supported: %s)",
		format, strings.Join(Formats(), ", "))
}
