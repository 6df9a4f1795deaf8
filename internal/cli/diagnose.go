package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cmkit/internal/config"
	"cmkit/internal/diagnostics"
)

var diagnoseDialect string

func newDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose [file...]",
		Short: "Parse compiler and linker output into diagnostics",
		Long:  "Reads build console output from the given files, or from stdin when none are given, and prints every GCC, GHS or GNU ld diagnostic found.",
		RunE:  runDiagnose,
	}
	cmd.Flags().StringVar(&diagnoseDialect, "dialect", "", "Dialect to parse: auto, gcc, ghs or gnuld (default from config)")
	return cmd
}

// resolveDialect returns "" for auto-detection across all dialects.
func resolveDialect(flagValue, configValue string) (diagnostics.Dialect, error) {
	name := strings.TrimSpace(flagValue)
	if name == "" {
		name = strings.TrimSpace(configValue)
	}
	if name == "" || strings.EqualFold(name, config.DefaultDialect) {
		return "", nil
	}
	return diagnostics.ParseDialect(name)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}
	dialect, err := resolveDialect(diagnoseDialect, cfg.Diagnostics.Dialect)
	if err != nil {
		return err
	}

	var results []diagnostics.FileResult
	if len(args) == 0 {
		collector := diagnostics.NewCollector(dialect)
		if err := collector.Consume(cmd.InOrStdin()); err != nil {
			return err
		}
		results = []diagnostics.FileResult{{Path: "-", Diagnostics: collector.Diagnostics()}}
	} else {
		results, err = diagnostics.ScanFiles(commandContext(cmd), args, dialect)
		if err != nil {
			return err
		}
	}

	counts := map[diagnostics.Severity]int{}
	for _, r := range results {
		for _, d := range r.Diagnostics {
			counts[d.Severity]++
		}
	}

	if outputJSON {
		if err := writeJSON(cmd, results); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, r := range results {
			for _, d := range r.Diagnostics {
				writeDiagnostic(out, d)
			}
		}
		fmt.Fprintln(out, summarizeCounts(counts))
	}

	if n := counts[diagnostics.SeverityError]; n > 0 {
		return fmt.Errorf("%d error diagnostic(s) found", n)
	}
	return nil
}

// writeDiagnostic prints one record with one-based positions.
func writeDiagnostic(w io.Writer, d diagnostics.Diagnostic) {
	severity := severityStyle(d.Severity).Render(string(d.Severity))
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.Line+1, d.Column+1, severity, d.Message)
}

func summarizeCounts(counts map[diagnostics.Severity]int) string {
	order := []diagnostics.Severity{
		diagnostics.SeverityError,
		diagnostics.SeverityWarning,
		diagnostics.SeverityRemark,
		diagnostics.SeverityNote,
	}
	parts := make([]string, 0, len(order))
	for _, sev := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[sev], sev))
	}
	return strings.Join(parts, ", ")
}
