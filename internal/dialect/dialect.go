package dialect

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the source-language variant governing how a file is parsed.
type Kind uint8

const (
	Unknown Kind = iota
	JS
	JSX
	TS
	TSX

	kindCount
)

func (k Kind) String() string {
	switch k {
	case JS:
		return "js"
	case JSX:
		return "jsx"
	case TS:
		return "ts"
	case TSX:
		return "tsx"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("Kind(%s)", k.String())
}

// TypeScript reports whether the dialect carries type annotations.
func (k Kind) TypeScript() bool {
	return k == TS || k == TSX
}

// FromPath resolves a dialect directly from the file extension.
// Template formats (.vue, .svelte, .astro) are not native dialects; they go
// through the partial loader instead.
func FromPath(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return JS, true
	case ".jsx":
		return JSX, true
	case ".ts", ".mts", ".cts":
		return TS, true
	case ".tsx":
		return TSX, true
	}
	return Unknown, false
}

// IsPartialPath reports whether the file is a template format with embedded
// script blocks.
func IsPartialPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue", ".svelte", ".astro":
		return true
	}
	return false
}

// Extensions lists every analyzable extension, native dialects first.
func Extensions() []string {
	return []string{
		".js", ".mjs", ".cjs", ".jsx",
		".ts", ".mts", ".cts", ".tsx",
		".vue", ".svelte", ".astro",
	}
}

// fromLangAttr maps a <script lang="..."> attribute value to a dialect.
func fromLangAttr(lang string) Kind {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "js":
		return JS
	case "jsx":
		return JSX
	case "ts":
		return TS
	case "tsx":
		return TSX
	}
	return Unknown
}
