package dialect

import (
	"bytes"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// Extraction is one embedded script block lifted out of a template file.
// Offset is the byte position of Text[0] inside the enclosing file; findings
// produced on Text are shifted right by Offset before translation so editor
// positions land in the original file.
type Extraction struct {
	Dialect Kind
	Text    []byte
	Offset  uint32
}

// ExtractScripts pulls every analyzable script block out of a template file.
// Unknown template formats and files without script blocks yield nil.
func ExtractScripts(path string, content []byte) []Extraction {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue", ".svelte":
		return extractScriptTags(content, JS)
	case ".astro":
		out := extractFrontmatter(content)
		return append(out, extractScriptTags(content, TS)...)
	}
	return nil
}

// extractScriptTags scans for <script ...>...</script> pairs. The tag match
// is ASCII case-insensitive; a lang attribute overrides the default dialect.
func extractScriptTags(content []byte, def Kind) []Extraction {
	var out []Extraction
	pos := 0
	for {
		open := indexFold(content, pos, "<script")
		if open < 0 {
			return out
		}
		after := open + len("<script")
		if after < len(content) {
			switch content[after] {
			case ' ', '\t', '\n', '\r', '>', '/':
			default:
				// <scriptsomething — не тег скрипта
				pos = after
				continue
			}
		}
		tagEnd := bytes.IndexByte(content[after:], '>')
		if tagEnd < 0 {
			return out
		}
		tagEnd += after
		attrs := string(content[after:tagEnd])
		if strings.HasSuffix(strings.TrimSpace(attrs), "/") {
			// self-closing, no body
			pos = tagEnd + 1
			continue
		}
		bodyStart := tagEnd + 1
		closeAt := indexFold(content, bodyStart, "</script")
		if closeAt < 0 {
			return out
		}

		d := def
		if lang, ok := langAttr(attrs); ok {
			if k := fromLangAttr(lang); k != Unknown {
				d = k
			}
		}
		off, err := safecast.Conv[uint32](bodyStart)
		if err != nil {
			return out
		}
		out = append(out, Extraction{
			Dialect: d,
			Text:    content[bodyStart:closeAt],
			Offset:  off,
		})
		pos = closeAt + len("</script")
	}
}

// extractFrontmatter lifts the leading --- fenced block of an Astro file.
func extractFrontmatter(content []byte) []Extraction {
	i := 0
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		i = 3
	}
	for i < len(content) {
		c := content[i]
		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			break
		}
		i++
	}
	if !bytes.HasPrefix(content[i:], []byte("---")) {
		return nil
	}
	bodyStart := i + 3
	closeAt := bytes.Index(content[bodyStart:], []byte("\n---"))
	if closeAt < 0 {
		return nil
	}
	off, err := safecast.Conv[uint32](bodyStart)
	if err != nil {
		return nil
	}
	end := bodyStart + closeAt + 1 // keep the closing newline, line structure intact
	return []Extraction{{Dialect: TS, Text: content[bodyStart:end], Offset: off}}
}

// langAttr finds a lang="..." attribute in the opening tag body.
func langAttr(attrs string) (string, bool) {
	for _, field := range strings.Fields(attrs) {
		if !strings.HasPrefix(strings.ToLower(field), "lang=") {
			continue
		}
		val := field[len("lang="):]
		return strings.Trim(val, `"'`), true
	}
	return "", false
}

// indexFold is an ASCII case-insensitive index starting at from.
func indexFold(content []byte, from int, needle string) int {
	if from < 0 {
		from = 0
	}
	limit := len(content) - len(needle)
	for i := from; i <= limit; i++ {
		if equalFoldASCII(content[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(b []byte, s string) bool {
	for i := 0; i < len(s); i++ {
		c, d := b[i], s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if 'A' <= d && d <= 'Z' {
			d += 'a' - 'A'
		}
		if c != d {
			return false
		}
	}
	return true
}
