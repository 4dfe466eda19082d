package lintfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"sable/internal/diag"
	"sable/internal/linter"
)

func TestSarifOutput(t *testing.T) {
	res := linter.NewScanResult()
	res.Files["/proj/src/app.js"] = []linter.Diagnostic{
		{
			Range:    rng(1, 0, 1, 8),
			Severity: diag.SevError,
			Code:     "no-debugger",
			Message:  "unexpected debugger statement\nhelp: remove it",
		},
		{
			Range:    rng(0, 0, 0, 3),
			Severity: diag.SevWarning,
			Code:     "no-var",
			Message:  "use let or const instead of var",
			Related: []linter.RelatedInfo{
				{Range: rng(0, 0, 0, 3), Message: "declared with var"},
				{Range: rng(2, 0, 2, 3), Message: "shadowed here"},
			},
		},
	}

	var buf bytes.Buffer
	err := Sarif(&buf, res, SarifRunMeta{ToolName: "sable", ToolVersion: "0.1.0"}, SarifOpts{Root: "/proj"})
	if err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if log.Version != "2.1.0" {
		t.Errorf("Expected version 2.1.0, got %q", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("Expected one run, got %d", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "sable" {
		t.Errorf("Expected driver sable, got %q", run.Tool.Driver.Name)
	}
	if run.Automation.ID != "sable/check" {
		t.Errorf("Expected automation id sable/check, got %q", run.Automation.ID)
	}
	if _, err := uuid.Parse(run.Automation.GUID); err != nil {
		t.Errorf("Expected a valid run guid, got %q", run.Automation.GUID)
	}

	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("Expected 2 rules, got %v", run.Tool.Driver.Rules)
	}
	if run.Tool.Driver.Rules[0].ID != "no-debugger" || run.Tool.Driver.Rules[1].ID != "no-var" {
		t.Errorf("Expected sorted rule ids, got %v", run.Tool.Driver.Rules)
	}

	if len(run.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(run.Results))
	}
	first := run.Results[0]
	if first.RuleID != "no-debugger" || first.Level != "error" {
		t.Errorf("Expected no-debugger/error, got %s/%s", first.RuleID, first.Level)
	}
	if first.Message.Text != "unexpected debugger statement" {
		t.Errorf("Expected headline only, got %q", first.Message.Text)
	}
	region := first.Locations[0].Physical.Region
	if region.StartLine != 2 || region.StartColumn != 1 || region.EndColumn != 9 {
		t.Errorf("Expected 1-based region 2:1-2:9, got %+v", region)
	}
	if first.Locations[0].Physical.Artifact.URI != "src/app.js" {
		t.Errorf("Expected relative uri, got %q", first.Locations[0].Physical.Artifact.URI)
	}

	second := run.Results[1]
	if second.Level != "warning" || second.RuleIndex != 1 {
		t.Errorf("Expected warning with rule index 1, got %+v", second)
	}
	if len(second.Related) != 1 {
		t.Fatalf("Expected one related location (self reference dropped), got %d", len(second.Related))
	}
	if second.Related[0].Message == nil || second.Related[0].Message.Text != "shadowed here" {
		t.Errorf("Expected related message, got %+v", second.Related[0].Message)
	}
}

func TestSarifHintLevel(t *testing.T) {
	res := singleFile("/p/a.js", linter.Diagnostic{
		Range:    rng(0, 0, 0, 1),
		Severity: diag.SevHint,
		Code:     "no-var",
		Message:  "original diagnostic",
	})

	var buf bytes.Buffer
	if err := Sarif(&buf, res, SarifRunMeta{ToolName: "sable"}, SarifOpts{Root: "/p"}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := log.Runs[0].Results[0].Level; got != "note" {
		t.Errorf("Expected hints to map to note, got %q", got)
	}
}

func TestSarifEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, linter.NewScanResult(), SarifRunMeta{ToolName: "sable"}, SarifOpts{}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	run := log.Runs[0]
	if run.Results == nil {
		t.Error("Expected an empty results array, not null")
	}
	if run.Tool.Driver.Rules == nil {
		t.Error("Expected an empty rules array, not null")
	}
}
