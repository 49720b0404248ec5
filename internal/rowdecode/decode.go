// Package rowdecode implements the validation and decoding of one
// candidate record: the length/rowid/header-size prefix, the
// serial-type cell header, and overflow-page chain resolution. It
// trusts nothing in the input; every rejection path returns a non-
// accepted Outcome instead of an error so the caller (the page
// scanner) can simply try the next byte.
package rowdecode

import (
	"sqlitecarve/internal/fileimage"
	"sqlitecarve/internal/pagewalk"
	"sqlitecarve/internal/varint"
)

// Mode distinguishes a normal, slot-addressed record from one being
// reconstructed out of a leaf page's free-block space. It is modelled
// as a type, not a boolean, because the two modes have materially
// different acceptance rules and a different meaning for RowID.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFreeBlock
)

func (m Mode) String() string {
	if m == ModeFreeBlock {
		return "freeblock"
	}
	return "normal"
}

// Cell describes one decoded record cell.
type Cell struct {
	SerialType uint64
	Size       int
	// Offset is the byte offset of this cell's body, relative to
	// PayloadStart (the start of the header_size varint, i.e. the
	// start of the on-disk payload). It stays meaningful even when the
	// payload has been reassembled out of an overflow-page chain,
	// since material.Assemble reconstructs a buffer addressed the
	// same way.
	Offset int
}

// Record is a fully-validated payload descriptor for one recovered row.
type Record struct {
	Mode Mode
	// RowID is the decoded key in Normal mode, or -1 in FreeBlock mode
	// (a free-block reconstruction has no recoverable key).
	RowID      int64
	HeaderSize int
	// PayloadLength is the record's declared length field in Normal
	// mode (header+body), or the remaining body-byte budget in
	// FreeBlock mode (declared length minus HeaderSize).
	PayloadLength int
	// PayloadStart is the absolute image offset of the start of the
	// payload (the header_size varint's own first byte), the origin
	// every Cell.Offset is relative to.
	PayloadStart int
	Cells        []Cell
	// OverflowPages is the ordered chain of 1-indexed page numbers
	// holding the continuation of a payload that does not fit in its
	// home page. Empty when the record fits entirely in RecordPage.
	OverflowPages []int
	// RecordPage is the page the record's header was decoded from.
	RecordPage pagewalk.Page
	// Cursor is the byte offset within the image where decoding began.
	Cursor int
}

// Limits bounds what decode_row will accept, per the CLI filters
// exposed in internal/cliconfig.
type Limits struct {
	CellCountMin int
	CellCountMax int
	RowSizeMin   int
	RowSizeMax   int // 0 means unbounded
	PageSize     int
	PageCount    uint32
}

// Outcome is the result of one decode attempt.
type Outcome struct {
	Accepted bool
	Record   Record
	// FreeBlockAdvance is the number of bytes the scanner should skip
	// in FreeBlock mode on acceptance (running_offset + header_size + 4).
	// Unused in Normal mode.
	FreeBlockAdvance int
}

const maxSerialTypeVarintLen = 8
const maxOverflowLinks = 10000

// Decode attempts to validate and decode one record starting at cursor
// within page, in the given mode. forcedLength is only meaningful in
// ModeFreeBlock, where it is the free-block node's declared size
// (including its own 4-byte header).
func Decode(img *fileimage.Image, page pagewalk.Page, cursor int, mode Mode, forcedLength int, lim Limits) Outcome {
	reject := Outcome{}
	pageEnd := page.End()

	var length int64
	var rowid int64
	consumed := 0

	if mode == ModeNormal {
		v, n, ok := decodeBoundedVarint(img, cursor, pageEnd, varint.MaxLen)
		if !ok {
			return reject
		}
		length = int64(v)
		consumed += n
	} else {
		length = int64(forcedLength) - 4
		if length < 0 {
			return reject
		}
	}

	if int(length) > img.Len() {
		return reject
	}
	if int(length) < lim.RowSizeMin {
		return reject
	}
	if lim.RowSizeMax > 0 && int(length) > lim.RowSizeMax {
		return reject
	}

	if mode == ModeNormal {
		v, n, ok := decodeBoundedVarint(img, cursor+consumed, pageEnd, varint.MaxLen)
		if !ok {
			return reject
		}
		rowid = int64(v)
		consumed += n
		if rowid < 1 {
			return reject
		}
	} else {
		rowid = -1
	}

	prefixLength := consumed

	headerSizeVal, headerVarintLen, ok := decodeBoundedVarint(img, cursor+prefixLength, pageEnd, varint.MaxLen)
	if !ok {
		return reject
	}
	headerSize := int(headerSizeVal)
	if headerSize > lim.PageSize || headerSize < 2 {
		return reject
	}

	if mode == ModeFreeBlock {
		length -= int64(headerSize)
		if length < 0 {
			return reject
		}
	}

	headerStart := cursor + prefixLength
	headerEnd := headerStart + headerSize
	if headerEnd > pageEnd || headerEnd > img.Len() {
		return reject
	}

	var overflowPages []int
	if length > int64(lim.PageSize-35) {
		chain, ok := resolveOverflowChain(img, page, lim)
		if !ok {
			return reject
		}
		overflowPages = chain
	}

	cellCursor := headerStart + headerVarintLen
	runningOffset := 0
	cellCount := 0
	var cells []Cell

	for cellCursor < headerEnd {
		budget := headerEnd - cellCursor
		if budget > maxSerialTypeVarintLen {
			budget = maxSerialTypeVarintLen
		}
		s, n, ok := decodeBoundedVarint(img, cellCursor, cellCursor+budget, maxSerialTypeVarintLen)
		if !ok {
			return reject
		}
		if s == 10 || s == 11 {
			return reject
		}
		bodySize, ok := BodySizeFor(s)
		if !ok {
			return reject
		}

		cells = append(cells, Cell{SerialType: s, Size: bodySize, Offset: headerSize + runningOffset})
		runningOffset += bodySize
		if int64(runningOffset) > length {
			return reject
		}

		cellCursor += n
		cellCount++
		if cellCount > lim.CellCountMax {
			return reject
		}
	}
	if cellCursor != headerEnd {
		return reject
	}

	rec := Record{
		Mode:          mode,
		RowID:         rowid,
		HeaderSize:    headerSize,
		PayloadLength: int(length),
		PayloadStart:  headerStart,
		Cells:         cells,
		OverflowPages: overflowPages,
		RecordPage:    page,
		Cursor:        cursor,
	}

	if mode == ModeNormal {
		if int64(runningOffset+headerSize) != length || cellCount < lim.CellCountMin {
			return reject
		}
		return Outcome{Accepted: true, Record: rec}
	}

	if int64(runningOffset) > length {
		return reject
	}
	return Outcome{
		Accepted:         true,
		Record:           rec,
		FreeBlockAdvance: runningOffset + headerSize + 4,
	}
}

// decodeBoundedVarint decodes a varint starting at off, refusing to
// read at or past limit, and capping consumption at maxLen bytes.
func decodeBoundedVarint(img *fileimage.Image, off, limit, maxLen int) (uint64, int, bool) {
	if off >= limit {
		return 0, 0, false
	}
	avail := limit - off
	if avail > maxLen {
		avail = maxLen
	}
	b, err := img.Slice(off, avail)
	if err != nil {
		return 0, 0, false
	}
	v, n, err := varint.Decode(b)
	if err != nil {
		return 0, 0, false
	}
	return v, n, true
}

// resolveOverflowChain follows the overflow-page chain starting from
// the 4-byte big-endian page index stored at the last 4 bytes of page's
// window.
func resolveOverflowChain(img *fileimage.Image, page pagewalk.Page, lim Limits) ([]int, bool) {
	fileEnd := img.Len()
	ptrOff := page.End() - 4
	if ptrOff < page.Origin || ptrOff+4 > fileEnd {
		return nil, false
	}
	next, err := img.Uint32BE(ptrOff)
	if err != nil {
		return nil, false
	}

	var chain []int
	for next != 0 {
		if len(chain) >= maxOverflowLinks {
			return nil, false
		}
		if next < 1 || next > lim.PageCount {
			return nil, false
		}
		opOrigin := pagewalk.PageOrigin(lim.PageSize, int(next))
		if !img.Valid(opOrigin, 4) {
			return nil, false
		}
		chain = append(chain, int(next))

		nextVal, err := img.Uint32BE(opOrigin)
		if err != nil {
			return nil, false
		}
		next = nextVal
	}
	return chain, true
}
