package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/golf-league/internal/offline"
)

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigDefault.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON, or calls text for the human format.
func emit(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == "json" {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}

func printResult(w io.Writer, res offline.Result) {
	if res.Skipped {
		fmt.Fprintln(w, "sync already running, skipped")
		return
	}
	fmt.Fprintf(w, "sync %s: %d pushed, %d failed\n", res.RunID, res.Success, res.Failed)
	fmt.Fprintf(w, "pulled: %d imported, %d updated, %d stamped\n",
		res.Pulled.Imported, res.Pulled.Updated, res.Pulled.Stamped)
	fmt.Fprintf(w, "handicap: %.1f\n", res.Handicap)
	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "errors:\n  %s\n", strings.Join(res.Errors, "\n  "))
	}
}
