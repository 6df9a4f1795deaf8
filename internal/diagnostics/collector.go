package diagnostics

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MaxLineLength bounds the bytes kept from a single console line.
const MaxLineLength = 1024 * 1024

// Collector accumulates diagnostics from a stream of console lines. Lines
// that match no dialect are dropped. A GCC note is kept as its own record and
// also attached to the most recent non-note diagnostic.
type Collector struct {
	dialects []Dialect
	items    []Diagnostic
	primary  int
}

// NewCollector builds a collector for one dialect, or for all dialects in
// their fixed order when dialect is empty.
func NewCollector(dialect Dialect) *Collector {
	dialects := Dialects
	if dialect != "" {
		dialects = []Dialect{dialect}
	}
	return &Collector{dialects: dialects, primary: -1}
}

// Feed parses one physical line.
func (c *Collector) Feed(line string) (Diagnostic, bool) {
	for _, d := range c.dialects {
		diag, ok := d.Parse(line)
		if !ok {
			continue
		}
		if diag.Severity == SeverityNote && c.primary >= 0 {
			parent := &c.items[c.primary]
			parent.Related = append(parent.Related, Related{
				File:    diag.File,
				Line:    diag.Line,
				Column:  diag.Column,
				Message: diag.Message,
			})
		}
		c.items = append(c.items, diag)
		if diag.Severity != SeverityNote {
			c.primary = len(c.items) - 1
		}
		return diag, true
	}
	return Diagnostic{}, false
}

// Consume feeds every line read from r. Lines end at \n, \r\n or a lone
// \r. A line longer than MaxLineLength is cut at that length and the rest of
// it is discarded; reading continues with the next line.
func (c *Collector) Consume(r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)
	line := make([]byte, 0, 256)
	open, afterCR := false, false

	emit := func() {
		c.Feed(string(line))
		line = line[:0]
		open = false
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if open {
					emit()
				}
				return nil
			}
			return fmt.Errorf("read console output: %w", err)
		}

		if afterCR {
			afterCR = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case '\n':
			emit()
		case '\r':
			emit()
			afterCR = true
		default:
			open = true
			if len(line) < MaxLineLength {
				line = append(line, b)
			}
		}
	}
}

// Diagnostics returns the collected records in input order.
func (c *Collector) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.items...)
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for i := range c.items {
		if c.items[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts tallies diagnostics per severity.
func (c *Collector) Counts() map[Severity]int {
	counts := map[Severity]int{}
	for i := range c.items {
		counts[c.items[i].Severity]++
	}
	return counts
}

// FileResult holds the diagnostics parsed from one console log.
type FileResult struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// ScanFiles parses several console logs concurrently. Each file is read fully
// before parsing starts. Results keep the order of files.
func ScanFiles(ctx context.Context, files []string, dialect Dialect) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read console log: %w", err)
			}
			collector := NewCollector(dialect)
			if err := collector.Consume(bytes.NewReader(data)); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = FileResult{Path: path, Diagnostics: collector.Diagnostics()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
