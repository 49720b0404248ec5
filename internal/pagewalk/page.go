// Package pagewalk iterates the pages of a database image in file
// order, recognises leaf-table pages, and walks their free-block
// chains. It never consults the B-tree: a page is classified purely by
// its own type byte, and cell/free-block offsets are read directly,
// not through any index.
package pagewalk

import (
	"fmt"

	"sqlitecarve/internal/fileimage"
)

// LeafTablePageFlag is the type byte that marks a leaf table b-tree
// page — the only page kind this carver decodes.
const LeafTablePageFlag = 0x0D

// leafHeaderSize is the number of bytes in the leaf page header beyond
// the type byte itself.
const leafHeaderSize = 8

// LeafHeader is the 9-byte (including type byte) header of a leaf table page.
type LeafHeader struct {
	FreeblockOffset     uint16
	CellCount           uint16
	CellContentStart    uint16
	FragmentedFreeBytes uint8
}

// Page describes one page's location and, if applicable, its parsed
// leaf header.
type Page struct {
	Number int // 1-indexed
	Origin int // byte offset of the page start within the image
	Size   int
	IsLeaf bool
	Leaf   LeafHeader
}

// End returns the byte offset one past the end of the page.
func (p Page) End() int { return p.Origin + p.Size }

// Walker iterates pages 1..PageCount of img (or until the image is
// exhausted, if the declared page count overruns the file — a damaged
// or truncated header is not itself fatal to the scan).
type Walker struct {
	img       *fileimage.Image
	pageSize  int
	pageCount int
}

// New builds a Walker over img. pageCount is the header's declared page
// count; if it would run the walk past the end of the image the walk
// simply stops early.
func New(img *fileimage.Image, pageSize int, pageCount uint32) *Walker {
	return &Walker{img: img, pageSize: pageSize, pageCount: int(pageCount)}
}

// PageOrigin returns the byte offset of the start of 1-indexed page n.
func PageOrigin(pageSize, n int) int {
	return (n - 1) * pageSize
}

// Pages returns, in file order, every page that fits entirely within
// the image, up to the declared page count.
func (w *Walker) Pages() []Page {
	var out []Page
	for n := 1; n <= w.pageCount; n++ {
		origin := PageOrigin(w.pageSize, n)
		if !w.img.Valid(origin, w.pageSize) {
			break
		}
		out = append(out, w.readPage(n, origin))
	}
	return out
}

// PageAt reads the single page numbered n (1-indexed) if it lies
// entirely within the image.
func (w *Walker) PageAt(n int) (Page, error) {
	origin := PageOrigin(w.pageSize, n)
	if !w.img.Valid(origin, w.pageSize) {
		return Page{}, fmt.Errorf("pagewalk: page %d at offset %d does not fit in a %d-byte image", n, origin, w.img.Len())
	}
	return w.readPage(n, origin), nil
}

func (w *Walker) readPage(n, origin int) Page {
	p := Page{Number: n, Origin: origin, Size: w.pageSize}

	// Page 1 carries the 100-byte file header before the leaf header.
	typeOff := origin
	if n == 1 {
		typeOff += 100
	}

	typeByte, err := w.img.ByteAt(typeOff)
	if err != nil || typeByte != LeafTablePageFlag {
		return p
	}

	hdr, err := readLeafHeader(w.img, typeOff)
	if err != nil {
		return p
	}
	p.IsLeaf = true
	p.Leaf = hdr
	return p
}

// HeaderOffset returns the byte offset of the start of the leaf header
// (the type byte itself) within page n, accounting for page 1's
// preceding 100-byte file header.
func HeaderOffset(pageSize, n int) int {
	off := PageOrigin(pageSize, n)
	if n == 1 {
		off += 100
	}
	return off
}

func readLeafHeader(img *fileimage.Image, typeOff int) (LeafHeader, error) {
	freeblockOffset, err := img.Uint16BE(typeOff + 1)
	if err != nil {
		return LeafHeader{}, err
	}
	cellCount, err := img.Uint16BE(typeOff + 3)
	if err != nil {
		return LeafHeader{}, err
	}
	cellContentStart, err := img.Uint16BE(typeOff + 5)
	if err != nil {
		return LeafHeader{}, err
	}
	fragmentedFreeBytes, err := img.ByteAt(typeOff + 7)
	if err != nil {
		return LeafHeader{}, err
	}
	return LeafHeader{
		FreeblockOffset:     freeblockOffset,
		CellCount:           cellCount,
		CellContentStart:    cellContentStart,
		FragmentedFreeBytes: fragmentedFreeBytes,
	}, nil
}

