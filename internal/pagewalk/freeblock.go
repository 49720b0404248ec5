package pagewalk

import "sqlitecarve/internal/fileimage"

// FreeBlock is one node of a leaf page's free-block chain: a span of
// unused bytes that may still hold the tail of a logically-deleted
// record.
type FreeBlock struct {
	// Offset is the byte offset of the free-block's 4-byte node header,
	// relative to the start of the page.
	Offset int
	// Size is the node's declared size in bytes, including its own
	// 4-byte header.
	Size int
}

// FreeBlockChain walks the free-block list of a single leaf page: an
// intra-page linked list of (next-offset, size) nodes, as opposed to a
// cross-page list of page IDs.
//
// next_offset and size are both read as big-endian uint16 at each node;
// next_offset of 0 terminates the chain. The walk stops defensively on
// any node offset pointing outside the page, rather than erroring, since
// a free-block chain found in a damaged file is diagnostic input, not a
// fatal condition.
func FreeBlockChain(img *fileimage.Image, page Page) []FreeBlock {
	var chain []FreeBlock
	if !page.IsLeaf {
		return nil
	}
	next := int(page.Leaf.FreeblockOffset)
	seen := map[int]bool{}
	for next != 0 {
		if seen[next] {
			break // cyclic chain in a hostile/corrupt file
		}
		seen[next] = true

		nodeOff := page.Origin + next
		if !img.Valid(nodeOff, 4) || nodeOff+4 > page.End() {
			break
		}
		nextOff, err := img.Uint16BE(nodeOff)
		if err != nil {
			break
		}
		size, err := img.Uint16BE(nodeOff + 2)
		if err != nil {
			break
		}
		chain = append(chain, FreeBlock{Offset: next, Size: int(size)})
		next = int(nextOff)
	}
	return chain
}
