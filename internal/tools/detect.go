package tools

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// LookPath locates executables. Tests replace it.
var LookPath = exec.LookPath

// Detect returns the status of each known tool, sorted by name. Probes run
// concurrently; a missing or broken tool is reported in its Status, never as
// an error.
func Detect(ctx context.Context) ([]Status, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	names := KnownTools()
	statuses := make([]Status, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(names), 4))
	for i, name := range names {
		i := i
		def, _ := Definition(name)
		g.Go(func() error {
			statuses[i] = detectOne(gctx, def)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func detectOne(ctx context.Context, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Required: def.Required}

	path, err := locateSystem(def)
	if err != nil {
		status.Error = err.Error()
		status.Satisfied = !def.Required
		return status
	}
	status.Path = path

	version, err := readVersion(ctx, def, path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
	}
	return status
}

func locateSystem(def ToolDefinition) (string, error) {
	for _, candidate := range def.Candidates {
		if path, err := LookPath(executableName(candidate)); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s not found in PATH", def.Name)
}
