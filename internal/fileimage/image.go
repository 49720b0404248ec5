// Package fileimage exposes a forensic target file as a read-only,
// bounds-checked byte region. It replaces pointer arithmetic over a
// mapped blob with bounds-checked slicing of an in-memory byte slice:
// every computed address is validated against the file window before
// a caller is allowed to dereference it.
package fileimage

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Image is an immutable, randomly addressable view of a file's bytes.
type Image struct {
	bytes []byte
}

// Open reads path fully into memory and returns an Image wrapping it.
// The file must be a regular, readable file; Open does not interpret
// its contents in any way.
func Open(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Image{bytes: b}, nil
}

// Wrap builds an Image directly from an in-memory byte slice. It is
// used by tests and by internal/fixture to exercise the carver against
// synthetic page-format buffers without touching the filesystem.
func Wrap(b []byte) *Image {
	return &Image{bytes: b}
}

// Len returns the total number of bytes in the image.
func (im *Image) Len() int { return len(im.bytes) }

// Valid reports whether the half-open range [off, off+n) lies entirely
// within the image.
func (im *Image) Valid(off, n int) bool {
	if off < 0 || n < 0 {
		return false
	}
	end := off + n
	return end >= off && off <= len(im.bytes) && end <= len(im.bytes)
}

// Slice returns a read-only view of [off, off+n). The returned slice
// aliases the image's backing array and must not be mutated or retained
// past the caller's use of it.
func (im *Image) Slice(off, n int) ([]byte, error) {
	if !im.Valid(off, n) {
		return nil, fmt.Errorf("fileimage: range [%d,%d) out of bounds (file size %d)", off, off+n, len(im.bytes))
	}
	return im.bytes[off : off+n], nil
}

// ByteAt returns the single byte at off.
func (im *Image) ByteAt(off int) (byte, error) {
	b, err := im.Slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16BE reads a big-endian uint16 at off.
func (im *Image) Uint16BE(off int) (uint16, error) {
	b, err := im.Slice(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32BE reads a big-endian uint32 at off.
func (im *Image) Uint32BE(off int) (uint32, error) {
	b, err := im.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Uint64BE reads a big-endian uint64 at off.
func (im *Image) Uint64BE(off int) (uint64, error) {
	b, err := im.Slice(off, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
