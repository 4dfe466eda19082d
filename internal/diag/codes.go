package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Загрузка файлов
	IOInfo          Code = 1000
	IOReadFileError Code = 1001

	// Синтаксис (из дерева разбора)
	ParseInfo              Code = 2000
	ParseUnexpectedToken   Code = 2001
	ParseMissingToken      Code = 2002
	ParseTopLevelReturn    Code = 2003
	ParseUnsupportedSyntax Code = 2004

	// Семантические ранние ошибки
	SemaInfo           Code = 3000
	SemaRedeclaration  Code = 3001
	SemaDuplicateParam Code = 3002

	// Встроенные правила
	LintInfo                     Code = 4000
	LintPreferReflectApply       Code = 4001
	LintNoDebugger               Code = 4002
	LintEqeqeq                   Code = 4003
	LintNoDupeKeys               Code = 4004
	LintNoArrayConstructor       Code = 4005
	LintNoSparseArrays           Code = 4006
	LintNoEmpty                  Code = 4007
	LintNoVar                    Code = 4008
	LintUnnormalizedIdent        Code = 4009
	LintUnicodeBOM               Code = 4010
	LintLinebreakStyle           Code = 4011

	// Правила из плагинов
	PluginInfo      Code = 5000
	PluginRuleMatch Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	IOInfo:                 "I/O information",
	IOReadFileError:        "Cannot read file",
	ParseInfo:              "Syntax information",
	ParseUnexpectedToken:   "Unexpected token",
	ParseMissingToken:      "Missing token",
	ParseTopLevelReturn:    "Return outside of function",
	ParseUnsupportedSyntax: "Unsupported syntax",
	SemaInfo:               "Semantic information",
	SemaRedeclaration:      "Identifier redeclaration",
	SemaDuplicateParam:     "Duplicate parameter name",
	LintInfo:               "Lint information",
	LintPreferReflectApply: "Prefer Reflect.apply over Function#apply",
	LintNoDebugger:         "Unexpected debugger statement",
	LintEqeqeq:             "Require strict equality operators",
	LintNoDupeKeys:         "Duplicate object key",
	LintNoArrayConstructor: "Avoid the Array constructor",
	LintNoSparseArrays:     "Sparse array literal",
	LintNoEmpty:            "Empty block statement",
	LintNoVar:              "Prefer let or const over var",
	LintUnnormalizedIdent:  "Identifier is not in Unicode NFC form",
	LintUnicodeBOM:         "Unexpected byte order mark",
	LintLinebreakStyle:     "Unexpected CRLF line ending",
	PluginInfo:             "Plugin information",
	PluginRuleMatch:        "Plugin rule match",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PLG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
