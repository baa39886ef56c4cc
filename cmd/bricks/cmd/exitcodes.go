package cmd

import (
	"encoding/json"
	"io"

	"github.com/dehydratedfish/bricks/internal/diag"
)

// Exit codes, mirroring the teacher's own ExitSuccess/.../ExitConfigError
// scheme (spec.md §7's "process exits non-zero if the global error flag
// is set").
const (
	exitSuccess     = 0
	exitViolations  = 1 // build had errors
	exitConfigError = 2 // startup, config, or I/O error before a build ran
)

func writeJSONDiagnostics(w io.Writer, entries []diag.Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
