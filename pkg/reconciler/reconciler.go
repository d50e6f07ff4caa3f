// Package reconciler turns monthly attendance sheets into a small relational
// model: an identity table of students and teachers and a table of daily
// hifz/murajaah facts.
//
// A run loads previously persisted tables, discovers source sheets in path
// order, resolves names to ids, applies the layout's conflict policy to every
// scored day and writes the tables back. Processing order fixes id
// assignment, so two runs over identical inputs assign identical ids.
// A source that cannot be read or has the wrong shape is logged and skipped;
// the rest of the batch still runs and is persisted.
package reconciler

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/entries"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/identity"
	"github.com/halaqa/halaqa/pkg/logging"
	"github.com/halaqa/halaqa/pkg/sheets"
)

// Engine reconciles source sheets against persisted state.
type Engine struct {
	fs       afero.Fs
	opts     *options
	state    *State
	injected bool

	// partitions processed in this run, in order
	scope []entries.Partition
}

// New creates an Engine reading and writing through fsys.
func New(fsys afero.Fs, opts ...Option) (*Engine, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	e := &Engine{fs: fsys, opts: o, state: o.state}
	if e.state == nil {
		e.state = NewState(o.layout)
	} else {
		e.injected = true
	}
	return e, nil
}

// State returns the engine's state. After Run it holds the reconciled
// identities and the facts accepted in the run.
func (e *Engine) State() *State {
	return e.state
}

// Run executes load, discovery, parsing and persistence.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Layout:    e.opts.layout,
		DryRun:    e.opts.dryRun,
		StartTime: time.Now(),
	}
	logger := logging.FromContext(ctx)

	// Step 1: Load prior identities and fact keys
	if err := e.Load(ctx, result); err != nil {
		return nil, err
	}

	// Step 2: Discover sources
	sources, err := e.Discover()
	if err != nil {
		return nil, err
	}
	result.FilesFound = len(sources)
	logger.Info().
		Str("root", e.root()).
		Int("files", len(sources)).
		Msg("Discovered source tables")

	// Step 3: Parse each source; file-scoped errors skip the file
	for _, src := range sources {
		if err := e.ParseSource(ctx, src, result); err != nil {
			if !errors.IsFileScoped(err) {
				return nil, err
			}
			logger.Warn().Err(err).Str("file", src.Path).Msg("Skipping source table")
			result.FilesSkipped = append(result.FilesSkipped, SkippedFile{Path: src.Path, Reason: err.Error()})
			continue
		}
		result.FilesProcessed++
	}

	// Step 4: Persist
	if err := e.Persist(ctx, result); err != nil {
		return nil, err
	}

	result.PersonsTotal = e.state.Identities.Len()
	result.Duration = time.Since(result.StartTime)
	logger.Info().
		Int("persons", result.PersonsTotal).
		Int("persons_created", result.PersonsCreated).
		Int("entries_added", result.EntriesAdded).
		Int("entries_skipped", result.EntriesSkipped).
		Int("entries_replaced", result.EntriesReplaced).
		Int("files_skipped", len(result.FilesSkipped)).
		Dur("duration", result.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// Load reads the persisted identity table and, for the ledger layout, the
// persisted fact keys. Injected state is used as is.
func (e *Engine) Load(ctx context.Context, result *Result) error {
	logger := logging.FromContext(ctx)
	if e.injected {
		result.PersonsLoaded = e.state.Identities.Len()
		result.EntriesLoaded = e.state.Entries.PriorLen()
		logger.Debug().Msg("Using injected state")
		return nil
	}

	n, err := identity.Load(e.fs, e.identityFile(), e.state.Identities)
	if err != nil {
		return err
	}
	result.PersonsLoaded = n
	logger.Info().Str("file", e.identityFile()).Int("persons", n).Msg("Loaded existing persons")

	// The monthly layout regenerates its partitions, so earlier facts are
	// never consulted.
	if e.opts.layout == LayoutLedger {
		n, err := entries.LoadLedger(e.fs, e.opts.dailyFile, e.state.Entries)
		if err != nil {
			return err
		}
		result.EntriesLoaded = n
		logger.Info().Str("file", e.opts.dailyFile).Int("entries", n).Msg("Loaded existing daily entries")
	}
	return nil
}

// Discover lists the sources of this run: one year partition when a year
// is configured, otherwise the whole tree.
func (e *Engine) Discover() ([]sheets.Source, error) {
	return sheets.Discover(e.fs, e.root(), e.opts.year == "", e.opts.year)
}

func (e *Engine) root() string {
	if e.opts.year != "" {
		return filepath.Join(e.opts.sourceDir, e.opts.year)
	}
	return e.opts.sourceDir
}

func (e *Engine) identityFile() string {
	if e.opts.layout == LayoutMonthly {
		return e.opts.usersFile
	}
	return e.opts.personFile
}

// ParseSource reads one source table and merges its rows into the state.
// Structural and decode errors are returned before any state changes.
func (e *Engine) ParseSource(ctx context.Context, src sheets.Source, result *Result) error {
	logger := logging.FromContext(logging.WithFile(ctx, src.Path))

	if err := src.CheckYear(); err != nil {
		return err
	}
	month, err := src.Month()
	if err != nil {
		return err
	}
	rows, err := sheets.ReadFile(e.fs, src.Path)
	if err != nil {
		return err
	}
	if len(rows) < constants.MinConvertRows {
		return errors.NewStructuralError(src.Path, "too few rows", "")
	}

	logger.Info().Msg("Processing source table")
	e.scope = append(e.scope, entries.Partition{Year: src.Year, Month: month})
	return e.mergeRows(logger, src.Year, month, rows, result)
}

// dayColumn locates the hifz and murajaah columns of one day.
type dayColumn struct {
	day      int
	hifz     int
	murajaah int
}

// dayColumns maps header columns to days: pairs start at the fourth
// column and a pair only counts when both of its columns exist.
func dayColumns(header []string) []dayColumn {
	var days []dayColumn
	for i := constants.FirstDayColumn; i+1 < len(header); i += 2 {
		days = append(days, dayColumn{
			day:      (i-constants.FirstDayColumn)/2 + 1,
			hifz:     i,
			murajaah: i + 1,
		})
	}
	return days
}

func (e *Engine) mergeRows(logger *zerolog.Logger, year string, month int, rows [][]string, result *Result) error {
	days := dayColumns(rows[constants.HeaderRow])

	var data [][]string
	if len(rows) > constants.FirstDataRow {
		data = rows[constants.FirstDataRow:]
	}

	for _, row := range data {
		if len(row) < 3 {
			continue
		}
		studentName := sheets.Cell(row, 0)
		teacherName := sheets.Cell(row, 2)
		if studentName == "" || teacherName == "" {
			continue
		}

		studentID, err := e.resolve(logger, studentName, identity.RoleStudent, result)
		if err != nil {
			return err
		}
		teacherID, err := e.resolve(logger, teacherName, identity.RoleTeacher, result)
		if err != nil {
			return err
		}

		for _, d := range days {
			fact := entries.Fact{
				StudentID: studentID,
				TeacherID: teacherID,
				Date:      entries.Date{Year: year, Month: month, Day: d.day},
				Hifz:      entries.ParseScore(sheets.Cell(row, d.hifz)),
				Murajaah:  entries.ParseScore(sheets.Cell(row, d.murajaah)),
			}
			if !fact.HasScore() {
				continue
			}

			stored, outcome := e.state.Entries.Put(fact)
			switch outcome {
			case entries.Added:
				result.EntriesAdded++
			case entries.Skipped:
				result.EntriesSkipped++
				logger.Debug().
					Str("student", studentName).
					Str("date", fact.Date.String()).
					Msg("Daily entry exists, skipping")
			case entries.Replaced:
				result.EntriesReplaced++
				logger.Debug().
					Str("student", studentName).
					Str("date", fact.Date.String()).
					Int("entry_id", stored.EntryID).
					Msg("Daily entry replaced by later row")
			}
		}
	}
	return nil
}

func (e *Engine) resolve(logger *zerolog.Logger, name string, role identity.Role, result *Result) (int, error) {
	id, created, err := e.state.Identities.Resolve(name, role)
	if err != nil {
		return 0, err
	}
	if created {
		result.PersonsCreated++
		logger.Debug().Str("name", name).Str("role", string(role)).Int("id", id).Msg("Added person")
	} else {
		logger.Trace().Str("name", name).Str("role", string(role)).Int("id", id).Msg("Person exists")
	}
	return id, nil
}

// Persist writes the identity table in full and the facts of this run: an
// append to the ledger, or a rewrite of every processed month partition.
func (e *Engine) Persist(ctx context.Context, result *Result) error {
	logger := logging.FromContext(ctx)
	if e.opts.dryRun {
		logger.Info().Msg("Dry run, nothing written")
		return nil
	}

	if err := identity.Save(e.fs, e.identityFile(), e.state.Identities); err != nil {
		return err
	}
	result.Written = append(result.Written, e.identityFile())

	facts := e.state.Entries.Facts()
	switch e.opts.layout {
	case LayoutMonthly:
		paths, err := entries.SaveMonthly(e.fs, e.opts.outputDir, e.scope, facts)
		result.Written = append(result.Written, paths...)
		if err != nil {
			return err
		}
	default:
		if len(facts) > 0 {
			if err := entries.AppendLedger(e.fs, e.opts.dailyFile, facts); err != nil {
				return err
			}
			result.Written = append(result.Written, e.opts.dailyFile)
		}
	}

	logger.Info().Strs("files", result.Written).Msg("Persisted tables")
	return nil
}
