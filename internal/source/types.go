package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (editor buffer, stdin, test).
	FileVirtual FileFlags = 1 << iota
)

// File captures metadata and raw content for a single source file.
// Content is kept byte-for-byte as read: spans and fixes address the bytes
// actually on disk, so no newline or BOM rewriting happens on load.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   *LineIndex
	Hash    [32]byte
	Flags   FileFlags
}

// LineAt returns the text of one line (0-based) without its terminator.
// A missing line yields an empty string.
func (f *File) LineAt(line uint32) string {
	return string(f.Lines.LineSlice(f.Content, line))
}

// Position is a display position: 0-based line and 0-based character column,
// the form editors consume.
type Position struct {
	Line      uint32
	Character uint32
}

// Compare orders positions by line, then character.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Character < o.Character:
		return -1
	case p.Character > o.Character:
		return 1
	}
	return 0
}

// Range is a half-open display range.
type Range struct {
	Start Position
	End   Position
}

// Compare orders ranges lexicographically on (start, end).
func (r Range) Compare(o Range) int {
	if c := r.Start.Compare(o.Start); c != 0 {
		return c
	}
	return r.End.Compare(o.End)
}
