// Package imagestore decodes rendered output into in-memory images and
// writes images back to disk.
//
// # Decoding
//
// [Decode] accepts any format registered with the standard image package.
// Importing imagestore registers PNG, JPEG and GIF from the standard library
// and BMP, TIFF and WebP from [golang.org/x/image]:
//
//	img, err := imagestore.Decode(data)
//
// Undecodable input fails with an [errors.ErrCodeDecode] error.
//
// # Writing
//
// [Write] encodes an image and creates or truncates the destination file:
//
//	err := imagestore.Write(img, "png", "graph.png")
//
// The format name is case-insensitive; an empty name selects [DefaultFormat].
// WebP is decode-only. Parent directories are never created: an unwritable
// path surfaces as an [errors.ErrCodeIO] error.
//
// [errors.ErrCodeDecode]: github.com/matzehuels/dotview/pkg/errors
// [errors.ErrCodeIO]: github.com/matzehuels/dotview/pkg/errors
package imagestore
