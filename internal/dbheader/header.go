// Package dbheader reads the fixed 100-byte file header that precedes
// page 1 of an embedded-RDBMS database file.
package dbheader

import (
	"fmt"

	"sqlitecarve/internal/fileimage"
)

const (
	// Size is the number of bytes in the file header, at the start of page 1.
	Size = 100

	pageSizeOff      = 16
	pageCountOff     = 28
	freelistHeadOff  = 32
	freelistPagesOff = 36
)

// Header holds the file-header fields the core consumes.
type Header struct {
	PageSize      int
	PageCount     uint32
	FreelistHead  uint32
	FreelistPages uint32
	// PageSizeOverridden records whether PageSize came from configuration
	// rather than the file header.
	PageSizeOverridden bool
}

// Read parses the file header from img. overridePageSize, if non-zero,
// replaces the header's page_size field entirely (the header bytes for
// page_size are not even consulted) — page_count and the free-list
// fields are still read from the file regardless of the override.
func Read(img *fileimage.Image, overridePageSize int) (Header, error) {
	if img.Len() < Size {
		return Header{}, fmt.Errorf("dbheader: file is %d bytes, shorter than the %d-byte header", img.Len(), Size)
	}

	var h Header
	if overridePageSize != 0 {
		if !isLegalPageSize(overridePageSize) {
			return Header{}, fmt.Errorf("dbheader: overridden page size %d is not a power of two in [512,65536]", overridePageSize)
		}
		h.PageSize = overridePageSize
		h.PageSizeOverridden = true
	} else {
		raw, err := img.Uint16BE(pageSizeOff)
		if err != nil {
			return Header{}, err
		}
		ps := int(raw)
		if ps == 1 {
			ps = 65536
		}
		if !isLegalPageSize(ps) {
			return Header{}, fmt.Errorf("dbheader: declared page size %d is not a power of two in [512,65536]", ps)
		}
		h.PageSize = ps
	}

	pageCount, err := img.Uint32BE(pageCountOff)
	if err != nil {
		return Header{}, err
	}
	h.PageCount = pageCount

	freelistHead, err := img.Uint32BE(freelistHeadOff)
	if err != nil {
		return Header{}, err
	}
	h.FreelistHead = freelistHead

	freelistPages, err := img.Uint32BE(freelistPagesOff)
	if err != nil {
		return Header{}, err
	}
	h.FreelistPages = freelistPages

	if img.Len() < h.PageSize {
		return Header{}, fmt.Errorf("dbheader: file size %d is smaller than one page (%d bytes)", img.Len(), h.PageSize)
	}

	return h, nil
}

func isLegalPageSize(n int) bool {
	if n < 512 || n > 65536 {
		return false
	}
	return n&(n-1) == 0
}
