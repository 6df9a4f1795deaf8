package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cmkit/internal/config"
	"cmkit/internal/diagnostics"
	"cmkit/internal/paths"
)

var configShowTOML bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit workspace configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigEditCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
	cmd.Flags().BoolVar(&configShowTOML, "toml", false, "Print TOML instead of YAML")
	return cmd
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the workspace configuration in $EDITOR",
		RunE:  runConfigEdit,
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the workspace configuration for mistakes",
		RunE:  runConfigValidate,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}

	encode := cfg.Marshal
	if configShowTOML {
		encode = cfg.EncodeTOML
	}
	data, err := encode()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	if err := ensureConfigFileExists(pp); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}

	parts := strings.Fields(editor)
	parts = append(parts, pp.ConfigFile)

	execCmd := exec.CommandContext(commandContext(cmd), parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = pp.Root

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

func ensureConfigFileExists(pp paths.WorkspacePaths) error {
	if _, err := os.Stat(pp.ConfigFile); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(pp.ConfigFile), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func knownDialectNames() []string {
	names := make([]string, 0, len(diagnostics.Dialects))
	for _, d := range diagnostics.Dialects {
		names = append(names, string(d))
	}
	return names
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}

	results := cfg.Validate(knownDialectNames())

	if outputJSON {
		if err := writeJSON(cmd, struct {
			Config  string                    `json:"config"`
			Results []config.ValidationResult `json:"results"`
		}{Config: pp.ConfigFile, Results: results}); err != nil {
			return err
		}
	} else if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pp.ConfigFile, checkStyle("ok").Render("OK"))
	} else {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", checkStyle(r.Level).Render(strings.ToUpper(r.Level)), r.Message)
		}
	}

	if config.HasErrors(results) {
		return fmt.Errorf("configuration has errors")
	}
	return nil
}
