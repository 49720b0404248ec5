// Package carver is the scan driver: it builds the header, walks
// pages, applies the cell-count/row-size/removed-only/freespace
// filters, and drives decode -> materialize -> emit for each candidate
// record. It is split into a normal-page loop and a free-block loop
// rather than one function parameterized by a mode flag, since the two
// loops' stop conditions and advance rules differ enough to read
// better apart.
package carver

import (
	"fmt"
	"io"

	"sqlitecarve/internal/dbheader"
	"sqlitecarve/internal/diag"
	"sqlitecarve/internal/emit"
	"sqlitecarve/internal/fileimage"
	"sqlitecarve/internal/material"
	"sqlitecarve/internal/pagewalk"
	"sqlitecarve/internal/rowdecode"
)

// minRecordPrefix is the number of bytes that must remain before the
// page end for the scanner to try another candidate cursor; the scanner
// stops a page when fewer bytes than this remain.
const minRecordPrefix = 10

// Config is the immutable scan configuration: limits and flags, with
// no mutable cursor state. Per-page state lives entirely on the stack
// of Scan's loops.
type Config struct {
	CellCountMin int
	CellCountMax int
	RowSizeMin   int
	RowSizeMax   int // 0 means unbounded

	PageSizeOverride int

	NoBlobs       bool
	BlobSizeLimit int
	FineSearch    bool
	Freespace     bool
	RemovedOnly   bool

	Verbose bool
	DiagOut io.Writer // defaults to a discarding writer if nil
}

// Stats summarizes one scan.
type Stats struct {
	PagesScanned int
	RowsEmitted  int
	RowsRejected int
}

// Scan runs the full carve over img, writing CSV rows to out and
// spilling large BLOBs into blobDir (the current directory if empty).
func Scan(cfg Config, img *fileimage.Image, out io.Writer, blobDir string) (Stats, error) {
	var stats Stats

	if img.Len() == 0 {
		// An empty input has no header and no pages; this is not a
		// fatal condition, just nothing to recover.
		return stats, nil
	}

	diagOut := cfg.DiagOut
	if diagOut == nil {
		diagOut = io.Discard
	}
	log := diag.New(diagOut, cfg.Verbose)

	hdr, err := dbheader.Read(img, cfg.PageSizeOverride)
	if err != nil {
		return stats, fmt.Errorf("carver: %w", err)
	}
	log.Banner("<image>", hdr.PageSize, hdr.PageCount, hdr.FreelistHead, hdr.FreelistPages)

	limits := rowdecode.Limits{
		CellCountMin: cfg.CellCountMin,
		CellCountMax: cfg.CellCountMax,
		RowSizeMin:   cfg.RowSizeMin,
		RowSizeMax:   cfg.RowSizeMax,
		PageSize:     hdr.PageSize,
		PageCount:    hdr.PageCount,
	}

	writer := &emit.Writer{
		Out:           out,
		BlobDir:       blobDir,
		NoBlobs:       cfg.NoBlobs,
		BlobSizeLimit: cfg.BlobSizeLimit,
		Warn:          log.Warn,
	}

	walker := pagewalk.New(img, hdr.PageSize, hdr.PageCount)
	for _, page := range walker.Pages() {
		stats.PagesScanned++
		log.PageTransition(page.Number, page.IsLeaf)
		if !page.IsLeaf {
			continue
		}

		if cfg.Freespace {
			for _, block := range pagewalk.FreeBlockChain(img, page) {
				scanFreeBlock(img, page, block, limits, cfg, writer, log, &stats)
			}
			continue
		}

		scanNormalPage(img, page, limits, cfg, writer, log, &stats)
	}

	return stats, nil
}

func scanNormalPage(img *fileimage.Image, page pagewalk.Page, limits rowdecode.Limits, cfg Config, writer *emit.Writer, log *diag.Logger, stats *Stats) {
	pageEnd := page.End()
	cursor := page.Origin

	for pageEnd-cursor >= minRecordPrefix {
		outcome := rowdecode.Decode(img, page, cursor, rowdecode.ModeNormal, 0, limits)
		if !outcome.Accepted {
			log.Rejection(page.Number, cursor, "normal decode failed")
			stats.RowsRejected++
			cursor++
			continue
		}

		if cfg.RemovedOnly && outcome.Record.RowID >= 0 {
			cursor++
			continue
		}

		if emitRecord(img, limits.PageSize, outcome.Record, writer, log) {
			stats.RowsEmitted++
		}

		advance := outcome.Record.PayloadLength
		if cfg.FineSearch {
			advance = 1
		}
		if advance < 1 {
			advance = 1
		}
		cursor += advance
	}
}

func scanFreeBlock(img *fileimage.Image, page pagewalk.Page, block pagewalk.FreeBlock, limits rowdecode.Limits, cfg Config, writer *emit.Writer, log *diag.Logger, stats *Stats) {
	pageEnd := page.End()
	cursor := page.Origin + block.Offset + 4
	forcedLength := block.Size
	consumed := 0

	for pageEnd-cursor >= minRecordPrefix && consumed < forcedLength {
		outcome := rowdecode.Decode(img, page, cursor, rowdecode.ModeFreeBlock, forcedLength, limits)
		if !outcome.Accepted {
			log.Rejection(page.Number, cursor, "freeblock decode failed")
			stats.RowsRejected++
			cursor++
			consumed++
			continue
		}

		if emitRecord(img, limits.PageSize, outcome.Record, writer, log) {
			stats.RowsEmitted++
		}

		adv := outcome.FreeBlockAdvance
		if adv < 1 {
			adv = 1
		}
		cursor += adv
		consumed += adv
	}
}

// emitRecord assembles the payload buffer, renders every cell, and
// writes the CSV line. It reports false (without error) on any
// bounds violation during materialization: the record is skipped and
// the scan continues.
func emitRecord(img *fileimage.Image, pageSize int, rec rowdecode.Record, writer *emit.Writer, log *diag.Logger) bool {
	buf, ok := material.Assemble(img, pageSize, rec)
	if !ok {
		log.Rejection(rec.RecordPage.Number, rec.Cursor, "materialize: bounds violation")
		return false
	}

	rendered := make([]material.RenderedCell, 0, len(rec.Cells))
	for _, c := range rec.Cells {
		rc, ok := material.RenderCell(buf, c)
		if !ok {
			log.Rejection(rec.RecordPage.Number, rec.Cursor, "render: cell out of bounds")
			return false
		}
		rendered = append(rendered, rc)
	}

	if err := writer.EmitRow(rec.RowID, rendered); err != nil {
		log.Warn("write failed: %v", err)
		return false
	}
	return true
}
