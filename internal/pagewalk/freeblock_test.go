package pagewalk

import (
	"testing"

	"sqlitecarve/internal/fileimage"
)

func TestFreeBlockChainWalksNodes(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize)
	buf[0] = LeafTablePageFlag

	// Node A at offset 20, size 16, next -> offset 60.
	nodeA := buf[20:]
	nodeA[0], nodeA[1] = 0, 60
	nodeA[2], nodeA[3] = 0, 16

	// Node B at offset 60, size 24, chain terminates.
	nodeB := buf[60:]
	nodeB[0], nodeB[1] = 0, 0
	nodeB[2], nodeB[3] = 0, 24

	img := fileimage.Wrap(buf)
	page := Page{Number: 1, Origin: 0, Size: pageSize, IsLeaf: true, Leaf: LeafHeader{FreeblockOffset: 20}}

	chain := FreeBlockChain(img, page)
	if len(chain) != 2 {
		t.Fatalf("FreeBlockChain returned %d nodes, want 2", len(chain))
	}
	if chain[0].Offset != 20 || chain[0].Size != 16 {
		t.Fatalf("chain[0] = %+v", chain[0])
	}
	if chain[1].Offset != 60 || chain[1].Size != 24 {
		t.Fatalf("chain[1] = %+v", chain[1])
	}
}

func TestFreeBlockChainStopsOnCycle(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize)
	buf[0] = LeafTablePageFlag

	// Node at offset 20 points right back at itself: a hostile or
	// corrupt chain must not loop forever.
	node := buf[20:]
	node[0], node[1] = 0, 20
	node[2], node[3] = 0, 8

	img := fileimage.Wrap(buf)
	page := Page{Number: 1, Origin: 0, Size: pageSize, IsLeaf: true, Leaf: LeafHeader{FreeblockOffset: 20}}

	chain := FreeBlockChain(img, page)
	if len(chain) != 1 {
		t.Fatalf("FreeBlockChain on a self-cycle returned %d nodes, want 1", len(chain))
	}
}

func TestFreeBlockChainEmptyWhenNoFreeblocks(t *testing.T) {
	page := Page{Number: 1, Origin: 0, Size: 512, IsLeaf: true, Leaf: LeafHeader{FreeblockOffset: 0}}
	img := fileimage.Wrap(make([]byte, 512))
	if chain := FreeBlockChain(img, page); chain != nil {
		t.Fatalf("FreeBlockChain = %v, want nil", chain)
	}
}

func TestFreeBlockChainNonLeafPageYieldsNothing(t *testing.T) {
	page := Page{Number: 1, Origin: 0, Size: 512, IsLeaf: false}
	img := fileimage.Wrap(make([]byte, 512))
	if chain := FreeBlockChain(img, page); chain != nil {
		t.Fatalf("FreeBlockChain on a non-leaf page = %v, want nil", chain)
	}
}
