package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"cmkit/internal/cmakecache"
	"cmkit/internal/compdb"
	"cmkit/internal/config"
	"cmkit/internal/project"
	"cmkit/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check workspace health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadWorkspaceConfig()
	if err != nil {
		var checks []healthCheck
		checks = append(checks, checkConfig(config.Config{}, err))
		return writeDoctorResult(cmd, projectDir, checks)
	}

	var checks []healthCheck
	checks = append(checks, checkConfig(cfg, nil))

	s, err := openSession(cmd)
	if err != nil {
		checks = append(checks, healthCheck{Name: "Workspace", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	defer s.Close()

	cache, cacheErr := s.ws.Cache(commandContext(cmd))
	checks = append(checks, checkCache(s.ws, cache, cacheErr))

	idx, idxErr := s.ws.CompilationDatabase()
	checks = append(checks, checkCompdb(s.ws, idx, idxErr))

	checks = append(checks, checkTools(cmd))

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs int
	for _, v := range cfg.Validate(knownDialectNames()) {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errs++
		}
	}

	summary := fmt.Sprintf("%d contexts, %d environment overrides", len(cfg.Contexts), len(cfg.Environment))
	if errs > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errs)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkCache(ws *project.Workspace, cache *cmakecache.Cache, err error) healthCheck {
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return healthCheck{Name: "Cache", Status: "warning", Summary: "not configured: " + ws.Paths.CacheFile}
		}
		return healthCheck{Name: "Cache", Status: "error", Summary: err.Error()}
	}

	parts := []string{fmt.Sprintf("%d entries", cache.Len())}
	for _, key := range []string{"CMAKE_GENERATOR", "CMAKE_BUILD_TYPE"} {
		if entry, ok := cache.Get(key); ok && entry.String() != "" {
			parts = append(parts, entry.String())
		}
	}
	return healthCheck{Name: "Cache", Status: "ok", Summary: strings.Join(parts, ", ")}
}

func checkCompdb(ws *project.Workspace, idx *compdb.Index, err error) healthCheck {
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return healthCheck{Name: "Compile DB", Status: "warning", Summary: "missing: " + ws.Paths.CompileCommandsFile}
		}
		return healthCheck{Name: "Compile DB", Status: "error", Summary: err.Error()}
	}
	return healthCheck{Name: "Compile DB", Status: "ok", Summary: fmt.Sprintf("%d sources", idx.Len())}
}

func checkTools(cmd *cobra.Command) healthCheck {
	statuses, err := tools.Detect(commandContext(cmd))
	if err != nil {
		return healthCheck{Name: "Tools", Status: "error", Summary: err.Error()}
	}

	var found []string
	var missingRequired, unsatisfied []string
	for _, st := range statuses {
		if st.Path != "" && st.Satisfied {
			label := st.Tool
			if st.Version != "" {
				label += " " + st.Version
			}
			found = append(found, label)
			continue
		}
		if st.Required {
			missingRequired = append(missingRequired, st.Tool)
		} else if st.Path != "" {
			unsatisfied = append(unsatisfied, st.Tool)
		}
	}

	switch {
	case len(missingRequired) > 0:
		return healthCheck{Name: "Tools", Status: "error", Summary: "unusable: " + strings.Join(missingRequired, ", ")}
	case len(unsatisfied) > 0:
		return healthCheck{Name: "Tools", Status: "warning", Summary: "broken: " + strings.Join(unsatisfied, ", ")}
	}
	return healthCheck{Name: "Tools", Status: "ok", Summary: strings.Join(found, ", ")}
}

func writeDoctorResult(cmd *cobra.Command, root string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, checks)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("WORKSPACE HEALTH:")+" "+root)

	for _, c := range checks {
		var label string
		switch c.Status {
		case "ok":
			label = "OK"
		case "warning":
			label = "WARN"
		case "error":
			label = "ERROR"
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", checkStyle(c.Status).Render(label), c.Summary)
	}

	return nil
}
