package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"arch4u/internal/config"
	"arch4u/internal/engine/rules"
	"arch4u/internal/history"
	"arch4u/internal/parser"
	"arch4u/internal/resolver"
	"arch4u/internal/shared/observability"
	"arch4u/internal/shared/util"
)

// Analyzer wires the parser, resolver and rule engine together for a
// configured project. Units are parsed in parallel; a unit is only ever
// read after its construction, so no locking crosses unit boundaries.
type Analyzer struct {
	cfg     *config.Config
	parser  *parser.Parser
	log     *slog.Logger
	limiter *util.Limiter
	store   *history.Store // optional

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// RunResult aggregates one analysis pass over all configured scan paths.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Files       int
	Units       int
	ParseErrors int
	Violations  []rules.Violation
}

func NewAnalyzer(cfg *config.Config, log *slog.Logger, store *history.Store) (*Analyzer, error) {
	a := &Analyzer{
		cfg:     cfg,
		parser:  parser.NewParser(parser.NewGrammarLoader()),
		log:     log,
		limiter: util.NewLimiter(200, 50),
		store:   store,
	}

	for _, pattern := range cfg.Exclude.Dirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		a.excludeDirs = append(a.excludeDirs, g)
	}
	for _, pattern := range cfg.Exclude.Files {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		a.excludeFiles = append(a.excludeFiles, g)
	}

	return a, nil
}

// Run performs one full analysis pass. Cancellation is honored between
// units; a unit that started parsing finishes.
func (a *Analyzer) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	files, err := a.collectFiles()
	if err != nil {
		return nil, err
	}
	result.Files = len(files)
	a.log.Debug("scan complete", "files", len(files))

	units, parseErrors := a.parseAll(ctx, files)
	result.Units = len(units)
	result.ParseErrors = parseErrors
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := resolver.NewMemoryTypeGraph()
	graph.AddUnits(units)
	for _, h := range a.cfg.Hierarchy {
		for _, super := range h.Extends {
			graph.AddEdge(h.Type, super)
		}
	}

	engine := rules.NewEngine(resolver.New(graph))
	ruleConfigs := a.cfg.RuleConfigs()
	report := rules.NewReport()

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysisStart := time.Now()
		violations, err := engine.AnalyzeAll(unit, ruleConfigs)
		observability.AnalysisDuration.Observe(time.Since(analysisStart).Seconds())
		if err != nil {
			return nil, err
		}
		report.Add(violations...)
	}

	result.Violations = report.Violations()
	result.Duration = time.Since(started)

	if a.store != nil {
		summary := history.RunSummary{
			RunID:       result.RunID,
			Timestamp:   started.UTC(),
			Files:       result.Files,
			Units:       result.Units,
			ParseErrors: result.ParseErrors,
			Violations:  len(result.Violations),
			Duration:    result.Duration,
			ByRule:      report.CountByRule(),
		}
		if err := a.store.SaveRun(summary); err != nil {
			a.log.Warn("failed to persist run summary", "error", err)
		}
	}

	a.log.Info("analysis complete",
		"run_id", result.RunID,
		"files", result.Files,
		"violations", len(result.Violations),
		"duration", result.Duration,
	)
	return result, nil
}

func (a *Analyzer) collectFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range a.cfg.ScanPaths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if a.shouldExcludeDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".java") || a.shouldExcludeFile(path) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *Analyzer) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeDirs {
		if g.Match(base) || g.Match(util.NormalizePatternPath(path)) {
			return true
		}
	}
	return false
}

func (a *Analyzer) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeFiles {
		if g.Match(base) || g.Match(util.NormalizePatternPath(path)) {
			return true
		}
	}
	return false
}

// parseAll parses files concurrently and returns units ordered by path so
// downstream analysis is deterministic.
func (a *Analyzer) parseAll(ctx context.Context, files []string) ([]*parser.CompilationUnit, int) {
	type parsed struct {
		index int
		unit  *parser.CompilationUnit
	}

	workers := min(8, len(files))
	if workers == 0 {
		return nil, 0
	}

	jobs := make(chan int)
	results := make(chan parsed, len(files))
	var errorCount atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := a.limiter.Wait(ctx, 1); err != nil {
					return
				}
				path := files[idx]
				content, err := os.ReadFile(path)
				if err != nil {
					a.log.Warn("failed to read file", "path", path, "error", err)
					errorCount.Add(1)
					continue
				}
				parseStart := time.Now()
				unit, err := a.parser.ParseFile(path, content)
				observability.ParsingDuration.Observe(time.Since(parseStart).Seconds())
				if err != nil {
					a.log.Warn("failed to parse file", "path", path, "error", err)
					observability.ParseErrorsTotal.Inc()
					errorCount.Add(1)
					continue
				}
				observability.UnitsParsedTotal.Inc()
				results <- parsed{index: idx, unit: unit}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range files {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	ordered := make([]*parser.CompilationUnit, len(files))
	for p := range results {
		ordered[p.index] = p.unit
	}

	units := make([]*parser.CompilationUnit, 0, len(files))
	for _, unit := range ordered {
		if unit != nil {
			units = append(units, unit)
		}
	}
	return units, int(errorCount.Load())
}
