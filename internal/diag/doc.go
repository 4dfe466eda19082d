// Package diag defines the raw finding model shared by every analysis stage.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures for findings
//     produced by the parse / semantic / rule / plugin stages.
//   - Offer a light-weight collector (Bag) so producers can emit findings
//     without coupling to storage or formatting layers.
//   - Model fixes as structured span replacements the CLI can apply.
//
// # Scope
//
// Package diag performs no formatting, IO, or position mapping. Byte offsets
// are translated into display positions by internal/linter; rendering lives
// in internal/lintfmt; fix application lives in internal/fix.
//
// # Data model
//
// Finding is the central record. It contains:
//
//   - Severity – Hint, Info, Warning, Error (severity.go).
//   - Code – compact numeric identifier banded by stage (codes.go).
//   - Rule – the rule name for rule-engine and plugin findings.
//   - Message – human oriented text; keep it short and actionable.
//   - Help – optional guidance, rendered on its own line.
//   - Labels – one or more byte-offset spans; the first anchors the finding,
//     the rest point at supporting context ("first defined here").
//   - Fix – optional span replacement.
//
// Labels should be used sparingly: each extra label must add new context
// rather than repeating the finding message.
package diag
