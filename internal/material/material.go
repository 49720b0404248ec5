// Package material reconstructs a record's contiguous payload buffer —
// gathering bytes across the home page and any overflow-page chain —
// and renders each typed cell to its textual representation. It keeps
// a codec/exporter split: Assemble is pure byte-buffer construction,
// RenderCell is pure value formatting, and neither performs I/O.
package material

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sqlitecarve/internal/fileimage"
	"sqlitecarve/internal/pagewalk"
	"sqlitecarve/internal/rowdecode"
)

// Assemble gathers a record's full payload (header + body) into one
// contiguous buffer: PayloadLength bytes in ModeNormal, HeaderSize +
// PayloadLength bytes in ModeFreeBlock, where PayloadLength counts the
// body bytes only. For a record with no overflow
// chain this is a straight slice of the home page; a violation of page
// bounds causes Assemble to report failure rather than read outside the
// page. For a record with an overflow chain, the buffer is built from
// the home page's head region followed by each overflow page's
// pageSize-4 byte payload span. Every address is bounds-checked against
// the image before it is read.
func Assemble(img *fileimage.Image, pageSize int, rec rowdecode.Record) ([]byte, bool) {
	pageEnd := rec.RecordPage.End()
	total := rec.PayloadLength
	if rec.Mode == rowdecode.ModeFreeBlock {
		total += rec.HeaderSize
	}

	if len(rec.OverflowPages) == 0 {
		if rec.PayloadStart+total > pageEnd {
			return nil, false
		}
		b, err := img.Slice(rec.PayloadStart, total)
		if err != nil {
			return nil, false
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, true
	}

	headRegionEnd := pageEnd - 4
	if headRegionEnd < rec.PayloadStart {
		return nil, false
	}
	headLen := headRegionEnd - rec.PayloadStart

	buf := make([]byte, total)
	head, err := img.Slice(rec.PayloadStart, headLen)
	if err != nil {
		return nil, false
	}
	n := copy(buf, head)

	for _, pageNum := range rec.OverflowPages {
		if n >= len(buf) {
			break
		}
		origin := pagewalk.PageOrigin(pageSize, pageNum)
		chunk, err := img.Slice(origin+4, pageSize-4)
		if err != nil {
			return nil, false
		}
		n += copy(buf[n:], chunk)
	}
	if n < len(buf) {
		return nil, false
	}
	return buf, true
}

// RenderedCell is the text of one cell plus whether it is a BLOB that
// still needs sidecar-file handling by the emitter.
type RenderedCell struct {
	Text   string
	IsBlob bool
	Blob   []byte
}

// RenderCell formats one decoded cell from the assembled payload
// buffer. It never performs I/O; BLOB cells destined for a sidecar file
// are returned as raw bytes for the emitter to write.
func RenderCell(buf []byte, c rowdecode.Cell) (RenderedCell, bool) {
	if c.Offset < 0 || c.Offset+c.Size > len(buf) {
		return RenderedCell{}, false
	}
	body := buf[c.Offset : c.Offset+c.Size]

	switch {
	case c.SerialType == 0: // NULL
		return RenderedCell{Text: "NULL"}, true

	case c.SerialType == 1: // int8 carries the historical "x%d" prefix
		v := signExtendBE(body)
		return RenderedCell{Text: "x" + strconv.FormatInt(v, 10)}, true

	case c.SerialType == 2, c.SerialType == 3,
		c.SerialType == 4, c.SerialType == 5, c.SerialType == 6:
		v := signExtendBE(body)
		return RenderedCell{Text: strconv.FormatInt(v, 10)}, true

	case c.SerialType == 7: // float64
		f := float64FromBE(body)
		return RenderedCell{Text: strconv.FormatFloat(f, 'g', -1, 64)}, true

	case c.SerialType == 8:
		return RenderedCell{Text: "0"}, true
	case c.SerialType == 9:
		return RenderedCell{Text: "1"}, true

	case rowdecode.IsText(c.SerialType):
		return RenderedCell{Text: quoteText(body)}, true

	case rowdecode.IsBlob(c.SerialType):
		return RenderedCell{IsBlob: true, Blob: body}, true
	}

	return RenderedCell{}, false
}

// signExtendBE interprets b (1, 2, 3, 4, 6, or 8 bytes) as a big-endian
// two's-complement integer.
func signExtendBE(b []byte) int64 {
	if len(b) == 8 {
		return int64(binary.BigEndian.Uint64(b))
	}
	var v int64
	for _, x := range b {
		v = (v << 8) | int64(x)
	}
	if len(b) > 0 && b[0]&0x80 != 0 {
		v -= int64(1) << uint(len(b)*8)
	}
	return v
}

func float64FromBE(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// quoteText renders a TEXT cell as a double-quoted span: embedded
// double quotes are doubled, and any non-printable byte becomes a dot.
func quoteText(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"':
			sb.WriteString(`""`)
		case c >= 0x20 && c < 0x7F:
			sb.WriteByte(c)
		default:
			sb.WriteByte('.')
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// HexBlob renders raw bytes as the format's inline BLOB literal, for a
// BLOB cell small enough not to be spilled to a sidecar file.
func HexBlob(b []byte) string {
	return fmt.Sprintf("x'%x'", b)
}
