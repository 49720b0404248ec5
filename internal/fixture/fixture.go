// Package fixture builds synthetic page-format byte buffers for tests,
// using internal/varint to encode exactly what internal/rowdecode must
// decode. It also offers a real-file generator backed by
// modernc.org/sqlite, so the decoder can be exercised against a
// genuinely standards-correct file rather than only hand-built byte
// arrays.
package fixture

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"sqlitecarve/internal/varint"
)

// Cell is one record cell to encode: a serial type and its already
// big-endian-encoded body bytes (empty for NULL/constant types).
type Cell struct {
	SerialType uint64
	Body       []byte
}

// Int8Cell builds an int8 (serial type 1) cell.
func Int8Cell(v int8) Cell { return Cell{SerialType: 1, Body: []byte{byte(v)}} }

// Int16Cell builds an int16 (serial type 2) cell.
func Int16Cell(v int16) Cell {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return Cell{SerialType: 2, Body: b}
}

// TextCell builds a TEXT cell (odd serial type >= 13) for s.
func TextCell(s string) Cell {
	return Cell{SerialType: uint64(13 + 2*len(s)), Body: []byte(s)}
}

// BlobCell builds a BLOB cell (even serial type >= 12) for b.
func BlobCell(b []byte) Cell {
	return Cell{SerialType: uint64(12 + 2*len(b)), Body: append([]byte(nil), b...)}
}

// EncodeRecord builds the on-disk bytes of one Normal-mode record:
// length varint, rowid varint, header (header_size varint + serial
// type varints), then the concatenated cell bodies.
func EncodeRecord(rowid int64, cells []Cell) []byte {
	var serialTypes []byte
	var body []byte
	for _, c := range cells {
		serialTypes = append(serialTypes, varint.Encode(c.SerialType)...)
		body = append(body, c.Body...)
	}

	// header_size includes its own varint's length; try encodings until
	// the length is self-consistent (at most 2 iterations in practice).
	headerSize := 1 + len(serialTypes)
	for {
		hs := varint.Encode(uint64(headerSize))
		if len(hs)+len(serialTypes) == headerSize {
			break
		}
		headerSize = len(hs) + len(serialTypes)
	}
	header := append(varint.Encode(uint64(headerSize)), serialTypes...)

	length := uint64(len(header) + len(body))
	out := append([]byte{}, varint.Encode(length)...)
	out = append(out, varint.Encode(uint64(rowid))...)
	out = append(out, header...)
	out = append(out, body...)
	return out
}

// EncodeFreeBlockBody builds the on-disk bytes of one FreeBlock-mode
// record: header (header_size varint + serial type varints) followed by
// the cell bodies, with no length/rowid prefix. The free-block node
// header and its declared size are left to the caller.
func EncodeFreeBlockBody(cells []Cell) []byte {
	var serialTypes []byte
	var body []byte
	for _, c := range cells {
		serialTypes = append(serialTypes, varint.Encode(c.SerialType)...)
		body = append(body, c.Body...)
	}
	headerSize := 1 + len(serialTypes)
	for {
		hs := varint.Encode(uint64(headerSize))
		if len(hs)+len(serialTypes) == headerSize {
			break
		}
		headerSize = len(hs) + len(serialTypes)
	}
	header := append(varint.Encode(uint64(headerSize)), serialTypes...)
	return append(header, body...)
}

// FileHeader returns a 100-byte file header with the four fields the
// core consumes populated, everything else zeroed.
func FileHeader(pageSize int, pageCount, freelistHead, freelistPages uint32) []byte {
	h := make([]byte, 100)
	ps := uint16(pageSize)
	if pageSize == 65536 {
		ps = 1
	}
	binary.BigEndian.PutUint16(h[16:], ps)
	binary.BigEndian.PutUint32(h[28:], pageCount)
	binary.BigEndian.PutUint32(h[32:], freelistHead)
	binary.BigEndian.PutUint32(h[36:], freelistPages)
	return h
}

// LeafHeaderBytes returns the 9-byte leaf table page header (type byte
// plus the four fields), to be written starting at the page's type
// offset.
func LeafHeaderBytes(freeblockOffset, cellCount, cellContentStart uint16, fragmentedFreeBytes byte) []byte {
	b := make([]byte, 9)
	b[0] = 0x0D
	binary.BigEndian.PutUint16(b[1:], freeblockOffset)
	binary.BigEndian.PutUint16(b[3:], cellCount)
	binary.BigEndian.PutUint16(b[5:], cellContentStart)
	b[7] = fragmentedFreeBytes
	return b
}

// SingleLeafPageFile builds a one-page file: the 100-byte file header,
// immediately followed (since page 1 carries both) by a leaf page
// header, and record placed recordOffset bytes past the start of that
// leaf header (byte 100+recordOffset of the page).
func SingleLeafPageFile(pageSize int, record []byte, recordOffset int) []byte {
	buf := make([]byte, pageSize)
	copy(buf, FileHeader(pageSize, 1, 0, 0))
	copy(buf[100:], LeafHeaderBytes(0, 1, 0, 0))
	copy(buf[100+recordOffset:], record)
	return buf
}

// FreeBlockLeafPageFile builds a one-page file whose leaf page has a
// single free-block node of size blockSize at byte offset
// freeblockOffset (relative to the page origin), containing body.
func FreeBlockLeafPageFile(pageSize int, freeblockOffset uint16, blockSize uint16, body []byte) []byte {
	buf := make([]byte, pageSize)
	copy(buf, FileHeader(pageSize, 1, 0, 0))
	copy(buf[100:], LeafHeaderBytes(freeblockOffset, 0, 0, 0))

	node := buf[int(freeblockOffset):]
	binary.BigEndian.PutUint16(node, 0) // next offset: chain ends here
	binary.BigEndian.PutUint16(node[2:], blockSize)
	copy(node[4:], body)
	return buf
}

// RealSQLiteFile writes a tiny genuine database (via modernc.org/sqlite)
// to a temp file and returns its raw bytes, for grounding the decoder
// against an independently-produced, standards-correct image.
func RealSQLiteFile(rows [][2]any) ([]byte, error) {
	tmp, err := os.CreateTemp("", "sqlitecarve-fixture-*.db")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		return nil, fmt.Errorf("fixture: create table: %w", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO items (id, name) VALUES (?, ?)`, r[0], r[1]); err != nil {
			return nil, fmt.Errorf("fixture: insert: %w", err)
		}
	}
	db.Close()

	return os.ReadFile(path)
}
