package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"cmkit/internal/config"
	"cmkit/internal/driver"
	"cmkit/internal/logx"
	"cmkit/internal/paths"
	"cmkit/internal/project"
)

// session bundles the opened workspace with its log file for one command.
type session struct {
	ws     *project.Workspace
	logger *log.Logger
	closer io.Closer
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadWorkspaceConfig() (paths.WorkspacePaths, config.Config, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return paths.WorkspacePaths{}, config.Config{}, err
	}

	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return paths.WorkspacePaths{}, config.Config{}, fmt.Errorf("stat workspace dir: %w", err)
	}
	if !exists {
		return paths.WorkspacePaths{}, config.Config{}, fmt.Errorf("workspace directory does not exist: %s", pp.Root)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return paths.WorkspacePaths{}, config.Config{}, err
	}
	return pp, cfg, nil
}

func openSession(cmd *cobra.Command) (*session, error) {
	pp, cfg, err := loadWorkspaceConfig()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("command", cmd.CommandPath()).Str("root", pp.Root).Msg("cmkit start")

	ws, err := project.Open(commandContext(cmd), pp, cfg, driver.NewRegistry(), logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &session{ws: ws, logger: logger, closer: closer}, nil
}

func (s *session) Close() {
	s.ws.Close()
	s.closer.Close()
}
