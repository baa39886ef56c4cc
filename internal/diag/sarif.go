package diag

import (
	"io"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

const (
	toolName = "bricks"
	toolURI  = "https://github.com/dehydratedfish/bricks"
)

// WriteSARIF renders entries as a SARIF 2.1.0 report, for CI/CD ingestion
// (GitHub code scanning and similar). Positionless diagnostics are emitted
// as file-level results against a synthetic "<process>" artifact.
func WriteSARIF(w io.Writer, entries []Diagnostic, toolVersion string) error {
	report := sarif.NewReport()
	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if toolVersion != "" {
		run.Tool.Driver.WithVersion(toolVersion)
	}

	for _, d := range entries {
		result := sarif.NewRuleResult(d.Kind.String()).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(sarifLevel(d.Kind))

		file := d.File
		if file == "" {
			file = "<process>"
		}
		file = filepath.ToSlash(file)

		if d.HasPos {
			region := sarif.NewRegion().
				WithStartLine(d.Line).
				WithStartColumn(d.Column)
			physical := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(file)).
				WithRegion(region)
			result.WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(physical)})
		} else {
			physical := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(file))
			result.WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(physical)})
		}

		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(k Kind) string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}
