// Package zlibutil wraps the zlib codec used to store every loose
// object on disk.
package zlibutil

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"

	"github.com/halide-vcs/gitkit/internal/errutil"
)

// ErrDecompressionFailed is returned for any malformed zlib header or
// corrupt deflate stream. The spec collapses every such failure into a
// single kind, so no attempt is made to distinguish a bad header from a
// truncated stream.
var ErrDecompressionFailed = errors.New("zlib decompression failed")

// DefaultLevel is the compression level used by Compress. Git itself
// defaults to zlib level 6, and since OIDs are computed over the
// uncompressed form, nothing downstream depends on the compressed
// bytes being deterministic.
const DefaultLevel = zlib.DefaultCompression

// Decompress inflates a zlib-framed byte slice.
func Decompress(data []byte) (out []byte, err error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrDecompressionFailed
	}
	defer errutil.Close(r, &err)

	out, err = io.ReadAll(r)
	if err != nil {
		return nil, ErrDecompressionFailed
	}
	return out, nil
}

// Compress deflates data into a zlib-framed byte slice at DefaultLevel.
func Compress(data []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, DefaultLevel)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(data); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
