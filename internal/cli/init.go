package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"cmkit/internal/config"
	"cmkit/internal/logx"
	"cmkit/internal/paths"
)

var initTOML bool

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a cmkit workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	cmd.Flags().BoolVar(&initTOML, "toml", false, "Write cmkit.toml instead of cmkit.yaml")
	return cmd
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 && args[0] != "." {
		if filepath.IsAbs(args[0]) {
			return args[0], nil
		}
		return filepath.Join(cwd, args[0]), nil
	}
	return cwd, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(pp.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, config.DefaultLogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info().Str("root", pp.Root).Msg("cmkit init")

	created, err := ensureConfig(pp, initTOML, logger)
	if err != nil {
		return err
	}

	if created == "" {
		cmd.Printf("Workspace already initialized at %s\n", pp.Root)
		return nil
	}

	cmd.Printf("Initialized workspace at %s\n", pp.Root)
	cmd.Printf("  created %s\n", created)
	return nil
}

// ensureConfig writes the default configuration unless a config file exists.
// It returns the base name of the file it created.
func ensureConfig(pp paths.WorkspacePaths, asTOML bool, logger *log.Logger) (string, error) {
	for _, name := range []string{paths.ConfigFileName, paths.TOMLConfigFileName} {
		existing := filepath.Join(pp.Root, name)
		exists, err := paths.FileExists(existing)
		if err != nil {
			return "", fmt.Errorf("check config: %w", err)
		}
		if exists {
			logger.Info().Str("path", existing).Msg("config exists")
			return "", nil
		}
	}

	cfg := config.Default()
	cfg.ApplyDefaults()

	name := paths.ConfigFileName
	encode := cfg.Marshal
	if asTOML {
		name = paths.TOMLConfigFileName
		encode = cfg.EncodeTOML
	}

	data, err := encode()
	if err != nil {
		return "", err
	}

	target := filepath.Join(pp.Root, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	logger.Info().Str("path", target).Msg("created config")
	return name, nil
}
