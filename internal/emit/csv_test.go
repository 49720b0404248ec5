package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sqlitecarve/internal/material"
)

func TestEmitRowIntegerCell(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, BlobSizeLimit: 64}
	cells := []material.RenderedCell{{Text: "x42"}}
	if err := w.EmitRow(1, cells); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "1,x42\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q", got, want)
	}
}

func TestEmitRowTextCell(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, BlobSizeLimit: 64}
	cells := []material.RenderedCell{{Text: `"HELLO"`}}
	if err := w.EmitRow(7, cells); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "7,\"HELLO\"\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q", got, want)
	}
}

func TestEmitRowNullCell(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, BlobSizeLimit: 64}
	cells := []material.RenderedCell{{Text: "NULL"}, {Text: "x1"}}
	if err := w.EmitRow(3, cells); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "3,NULL,x1\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q", got, want)
	}
}

func TestEmitRowSmallBlobInline(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, BlobSizeLimit: 64}
	cells := []material.RenderedCell{{IsBlob: true, Blob: []byte{0xAB, 0xCD}}}
	if err := w.EmitRow(1, cells); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "1,x'abcd'\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q", got, want)
	}
}

func TestEmitRowLargeBlobSidecar(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	w := &Writer{Out: &buf, BlobDir: dir, BlobSizeLimit: 4}
	big := bytes.Repeat([]byte{0x01}, 10)

	if err := w.EmitRow(1, []material.RenderedCell{{IsBlob: true, Blob: big}}); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "1,\"0.blob\"\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q", got, want)
	}
	data, err := os.ReadFile(filepath.Join(dir, "0.blob"))
	if err != nil {
		t.Fatalf("reading sidecar: %v", err)
	}
	if !bytes.Equal(data, big) {
		t.Fatalf("sidecar contents = %x, want %x", data, big)
	}

	// a second large BLOB in the same writer gets the next counter value.
	if err := w.EmitRow(2, []material.RenderedCell{{IsBlob: true, Blob: big}}); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "1,\"0.blob\"\n2,\"1.blob\"\n"; got != want {
		t.Fatalf("EmitRow cumulative = %q, want %q", got, want)
	}
}

func TestEmitRowBlobSuppressedWhenNoBlobs(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf, NoBlobs: true, BlobSizeLimit: 64}
	cells := []material.RenderedCell{
		{Text: "x1"},
		{IsBlob: true, Blob: []byte{0xFF, 0xFF}},
	}
	if err := w.EmitRow(9, cells); err != nil {
		t.Fatalf("EmitRow: %v", err)
	}
	if got, want := buf.String(), "9,x1\n"; got != want {
		t.Fatalf("EmitRow = %q, want %q (BLOB cell should be dropped entirely)", got, want)
	}
}
