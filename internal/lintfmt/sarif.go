package lintfmt

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/google/uuid"

	"sable/internal/diag"
	"sable/internal/linter"
	"sable/internal/source"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool       `json:"tool"`
	Automation sarifAutomation `json:"automationDetails"`
	Results    []sarifResult   `json:"results"`
}

// sarifAutomation identifies one run so result aggregators can tell
// invocations apart.
type sarifAutomation struct {
	ID   string `json:"id"`
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Related   []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	Physical sarifPhysical `json:"physicalLocation"`
	Message  *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
	Region   sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifRegionOf(r source.Range) sarifRegion {
	return sarifRegion{
		StartLine:   r.Start.Line + 1,
		StartColumn: r.Start.Character + 1,
		EndLine:     r.End.Line + 1,
		EndColumn:   r.End.Character + 1,
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0): один run, правила
// собираются из реально встреченных кодов.
func Sarif(w io.Writer, res *linter.ScanResult, meta SarifRunMeta, opts SarifOpts) error {
	entries := flatten(res)
	entries, _ = capEntries(entries, opts.Max)

	ruleIndex := make(map[string]int)
	var rules []sarifRule
	for _, e := range entries {
		if _, ok := ruleIndex[e.d.Code]; !ok {
			ruleIndex[e.d.Code] = 0
			rules = append(rules, sarifRule{ID: e.d.Code})
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	for i, r := range rules {
		ruleIndex[r.ID] = i
	}

	results := make([]sarifResult, 0, len(entries))
	for _, e := range entries {
		d := e.d
		uri := displayPath(opts.Root, e.path)
		result := sarifResult{
			RuleID:    d.Code,
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: firstLine(d.Message)},
			Locations: []sarifLocation{{
				Physical: sarifPhysical{
					Artifact: sarifArtifact{URI: uri},
					Region:   sarifRegionOf(d.Range),
				},
			}},
		}
		for _, rel := range d.Related {
			if rel.Range == d.Range {
				continue
			}
			loc := sarifLocation{
				Physical: sarifPhysical{
					Artifact: sarifArtifact{URI: uri},
					Region:   sarifRegionOf(rel.Range),
				},
			}
			if rel.Message != "" {
				loc.Message = &sarifMessage{Text: rel.Message}
			}
			result.Related = append(result.Related, loc)
		}
		results = append(results, result)
	}

	if rules == nil {
		rules = []sarifRule{}
	}
	log := sarifLog{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:       sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion, Rules: rules}},
			Automation: sarifAutomation{ID: meta.ToolName + "/check", GUID: uuid.NewString()},
			Results:    results,
		}},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}
