package source

import (
	"fmt"

	"fortio.org/safecast"
)

// LineIndex maps byte offsets of one file's content to display positions.
// It records the starting offset of every line once; lookups are binary
// searches over that table.
type LineIndex struct {
	starts []uint32 // starts[0] == 0 always; one entry per line
	size   uint32   // content length in bytes
}

// NewLineIndex scans content once and records line starts.
func NewLineIndex(content []byte) *LineIndex {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	starts := make([]uint32, 1, 64)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i)+1)
		}
	}
	return &LineIndex{starts: starts, size: size}
}

// Size returns the indexed content length in bytes.
func (ix *LineIndex) Size() uint32 { return ix.size }

// LineCount returns the number of lines. Empty content still has one line.
func (ix *LineIndex) LineCount() uint32 {
	return uint32(len(ix.starts))
}

// Position maps a byte offset to its display position. An offset equal to
// the content length resolves to the end position; anything beyond reports
// ok=false and the caller substitutes a default.
func (ix *LineIndex) Position(off uint32) (Position, bool) {
	if off > ix.size {
		return Position{}, false
	}
	// бинпоиск: последняя строка, начинающаяся не позже off
	lo, hi := 0, len(ix.starts)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if ix.starts[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi // >= 0, так как starts[0] == 0
	return Position{Line: uint32(line), Character: off - ix.starts[line]}, true
}

// Offset reconstructs the byte offset of a display position. It fails when
// the line does not exist or the character runs past the end of that line.
func (ix *LineIndex) Offset(pos Position) (uint32, bool) {
	if pos.Line >= uint32(len(ix.starts)) {
		return 0, false
	}
	off := ix.starts[pos.Line] + pos.Character
	if off > ix.size {
		return 0, false
	}
	if next := int(pos.Line) + 1; next < len(ix.starts) && off >= ix.starts[next] {
		return 0, false
	}
	return off, true
}

// LineStart returns the byte offset at which the given line begins.
func (ix *LineIndex) LineStart(line uint32) (uint32, bool) {
	if line >= uint32(len(ix.starts)) {
		return 0, false
	}
	return ix.starts[line], true
}

// LineSlice returns the content of one line without its terminator. A CRLF
// terminator is dropped whole so renderers never print a stray \r.
func (ix *LineIndex) LineSlice(content []byte, line uint32) []byte {
	if line >= uint32(len(ix.starts)) {
		return nil
	}
	start := ix.starts[line]
	end := ix.size
	terminated := false
	if next := line + 1; next < uint32(len(ix.starts)) {
		end = ix.starts[next] - 1
		terminated = true
	}
	if end > uint32(len(content)) {
		end = uint32(len(content))
	}
	if terminated && end > start && content[end-1] == '\r' {
		end--
	}
	if start >= end {
		return nil
	}
	return content[start:end]
}
