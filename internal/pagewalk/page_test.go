package pagewalk

import (
	"testing"

	"sqlitecarve/internal/fileimage"
	"sqlitecarve/internal/fixture"
)

func TestPageOrigin(t *testing.T) {
	cases := []struct {
		pageSize, n, want int
	}{
		{4096, 1, 0},
		{4096, 2, 4096},
		{512, 5, 2048},
	}
	for _, c := range cases {
		if got := PageOrigin(c.pageSize, c.n); got != c.want {
			t.Errorf("PageOrigin(%d,%d) = %d, want %d", c.pageSize, c.n, got, c.want)
		}
	}
}

func TestPagesRecognisesLeafPage(t *testing.T) {
	pageSize := 512
	buf := fixture.SingleLeafPageFile(pageSize, nil, 0)
	img := fileimage.Wrap(buf)
	w := New(img, pageSize, 1)

	pages := w.Pages()
	if len(pages) != 1 {
		t.Fatalf("Pages() returned %d pages, want 1", len(pages))
	}
	p := pages[0]
	if !p.IsLeaf {
		t.Fatalf("page 1 should be recognised as a leaf table page")
	}
	if p.Leaf.CellCount != 1 {
		t.Fatalf("CellCount = %d, want 1", p.Leaf.CellCount)
	}
	if p.Origin != 0 || p.Size != pageSize {
		t.Fatalf("Origin/Size = %d/%d", p.Origin, p.Size)
	}
	if p.End() != pageSize {
		t.Fatalf("End() = %d, want %d", p.End(), pageSize)
	}
}

func TestPagesStopsAtDeclaredCountOrEOF(t *testing.T) {
	pageSize := 512
	buf := fixture.SingleLeafPageFile(pageSize, nil, 0)
	img := fileimage.Wrap(buf)
	// Header declares 5 pages, but the image only has 1.
	w := New(img, pageSize, 5)

	pages := w.Pages()
	if len(pages) != 1 {
		t.Fatalf("Pages() returned %d pages, want 1 (file is truncated)", len(pages))
	}
}

func TestPageAtOutOfRange(t *testing.T) {
	pageSize := 512
	buf := fixture.SingleLeafPageFile(pageSize, nil, 0)
	img := fileimage.Wrap(buf)
	w := New(img, pageSize, 1)

	if _, err := w.PageAt(2); err == nil {
		t.Fatalf("PageAt(2) should fail on a one-page image")
	}
}

func TestNonLeafPageByteIsNotMisclassified(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize)
	copy(buf, fixture.FileHeader(pageSize, 1, 0, 0))
	buf[100] = 0x05 // interior b-tree page, not a leaf table page
	img := fileimage.Wrap(buf)
	w := New(img, pageSize, 1)

	p, err := w.PageAt(1)
	if err != nil {
		t.Fatalf("PageAt: %v", err)
	}
	if p.IsLeaf {
		t.Fatalf("page with type byte 0x05 should not be classified as a leaf table page")
	}
}

func TestHeaderOffsetAccountsForPageOneFileHeader(t *testing.T) {
	if got := HeaderOffset(512, 1); got != 100 {
		t.Fatalf("HeaderOffset(512,1) = %d, want 100", got)
	}
	if got := HeaderOffset(512, 2); got != 512 {
		t.Fatalf("HeaderOffset(512,2) = %d, want 512", got)
	}
}
