package reconciler_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halaqa/halaqa/pkg/entries"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/identity"
	"github.com/halaqa/halaqa/pkg/logging"
	"github.com/halaqa/halaqa/pkg/reconciler"
)

const (
	sourceDir  = "data/processed"
	personFile = "db/Person.csv"
	dailyFile  = "db/DailyEntry.csv"
	usersFile  = "data/database/Users.csv"
	outputDir  = "data/database"
)

// sheet builds a two-day source table: a title row, the header, two
// sub-header rows and the given data rows.
func sheet(data ...string) string {
	rows := []string{
		"حلقة الفجر,,,,,,",
		"اسم الطالب,العمر,الأستاذ,حفظ,مراجعة,حفظ,مراجعة",
		",,,يوم 1,,يوم 2,",
		",,,ص,ص,ص,ص",
	}
	rows = append(rows, data...)
	return strings.Join(rows, "\n") + "\n"
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func ledgerEngine(t *testing.T, fs afero.Fs, opts ...reconciler.Option) *reconciler.Engine {
	t.Helper()
	base := []reconciler.Option{
		reconciler.WithSourceDir(sourceDir),
		reconciler.WithPersonFile(personFile),
		reconciler.WithDailyFile(dailyFile),
	}
	engine, err := reconciler.New(fs, append(base, opts...)...)
	require.NoError(t, err)
	return engine
}

func monthlyEngine(t *testing.T, fs afero.Fs, opts ...reconciler.Option) *reconciler.Engine {
	t.Helper()
	base := []reconciler.Option{
		reconciler.WithLayout(reconciler.LayoutMonthly),
		reconciler.WithSourceDir(sourceDir),
		reconciler.WithUsersFile(usersFile),
		reconciler.WithOutputDir(outputDir),
	}
	engine, err := reconciler.New(fs, append(base, opts...)...)
	require.NoError(t, err)
	return engine
}

func run(t *testing.T, engine *reconciler.Engine) *reconciler.Result {
	t.Helper()
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	result, err := engine.Run(ctx)
	require.NoError(t, err)
	return result
}

func TestRunLedgerEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))

	result := run(t, ledgerEngine(t, fs))

	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.True(t, result.IsClean())
	assert.Equal(t, 2, result.PersonsCreated)
	assert.Equal(t, 1, result.EntriesAdded)
	assert.Equal(t, []string{personFile, dailyFile}, result.Written)

	assert.Equal(t, "person_id,name,role\n1,Ali,student\n1,Sara,teacher\n", readFile(t, fs, personFile))
	assert.Equal(t,
		"entry_id,student_id,teacher_id,entry_date,hifz,murajaah\n1,1,1,1447-05-01,8,7\n",
		readFile(t, fs, dailyFile))
}

func TestRunLedgerIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet(
		"Ali,10,Sara,8,7,5,",
		"Omar,11,Sara,,,3,2",
	))

	first := run(t, ledgerEngine(t, fs))
	assert.Equal(t, 3, first.EntriesAdded)
	persons := readFile(t, fs, personFile)
	daily := readFile(t, fs, dailyFile)

	second := run(t, ledgerEngine(t, fs))
	assert.Equal(t, 3, second.PersonsLoaded)
	assert.Equal(t, 3, second.EntriesLoaded)
	assert.Zero(t, second.PersonsCreated)
	assert.Zero(t, second.EntriesAdded)
	assert.Equal(t, 3, second.EntriesSkipped)
	assert.False(t, second.HasChanges())

	assert.Equal(t, persons, readFile(t, fs, personFile))
	assert.Equal(t, daily, readFile(t, fs, dailyFile))
}

func TestRunLedgerIdentityStableAcrossRuns(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))
	run(t, ledgerEngine(t, fs))

	writeFile(t, fs, "data/processed/1447/6.csv", sheet(
		"Omar,12,Hind,4,,,",
		"Ali,10,Sara,,6,,",
	))
	result := run(t, ledgerEngine(t, fs))

	assert.Equal(t, 2, result.PersonsCreated)
	assert.Equal(t, 2, result.EntriesAdded)
	assert.Equal(t, 1, result.EntriesSkipped)
	assert.Equal(t,
		"person_id,name,role\n1,Ali,student\n1,Sara,teacher\n2,Omar,student\n2,Hind,teacher\n",
		readFile(t, fs, personFile))
	assert.Equal(t,
		"entry_id,student_id,teacher_id,entry_date,hifz,murajaah\n"+
			"1,1,1,1447-05-01,8,7\n"+
			"2,2,2,1447-06-01,4,\n"+
			"3,1,1,1447-06-01,,6\n",
		readFile(t, fs, dailyFile))
}

func TestRunScoreOptionality(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet(
		"Ali,10,Sara,غائب,,x,",
		"Omar,11,Sara,,,,",
	))

	engine := ledgerEngine(t, fs)
	result := run(t, engine)

	// Persons are created even when none of their days carry a score.
	assert.Equal(t, 3, result.PersonsCreated)
	assert.Zero(t, result.EntriesAdded)
	assert.Equal(t, []string{personFile}, result.Written)

	exists, err := afero.Exists(fs, dailyFile)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunArabicIndicScores(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,٨,٧,١٠,"))

	result := run(t, ledgerEngine(t, fs))

	assert.Equal(t, 2, result.EntriesAdded)
	assert.Equal(t,
		"entry_id,student_id,teacher_id,entry_date,hifz,murajaah\n"+
			"1,1,1,1447-05-01,8,7\n"+
			"2,1,1,1447-05-02,10,\n",
		readFile(t, fs, dailyFile))
}

func TestRunIgnoresUnpairedTrailingColumn(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := strings.Join([]string{
		"title,,,,,",
		"اسم الطالب,العمر,الأستاذ,حفظ,مراجعة,حفظ",
		",,,1,,2",
		",,,ص,ص,ص",
		"Ali,10,Sara,8,7,9",
	}, "\n")
	writeFile(t, fs, "data/processed/1447/5.csv", content)

	engine := ledgerEngine(t, fs)
	result := run(t, engine)

	assert.Equal(t, 1, result.EntriesAdded)
	facts := engine.State().Entries.Facts()
	require.Len(t, facts, 1)
	assert.Equal(t, 1, facts[0].Date.Day)
}

func TestRunRowsWithoutNamesAreIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet(
		",10,Sara,8,7,,",
		"Ali,10,,8,7,,",
		"Ali",
	))

	result := run(t, ledgerEngine(t, fs))
	assert.Zero(t, result.PersonsCreated)
	assert.Zero(t, result.EntriesAdded)
}

func TestRunSkipsBadFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))
	writeFile(t, fs, "data/processed/1447/6.csv", "title\nheader\n\n,,\n")
	writeFile(t, fs, "data/processed/1447/7.csv", "title\n\xc3\x28\nrow\n")
	writeFile(t, fs, "data/processed/1447/notes.csv", sheet("Omar,10,Sara,8,7,,"))
	writeFile(t, fs, "data/processed/1447/readme.txt", "ignored")

	logger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logger.Logger)

	engine := ledgerEngine(t, fs)
	result, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesFound)
	assert.Equal(t, 1, result.FilesProcessed)
	require.Len(t, result.FilesSkipped, 3)
	assert.False(t, result.IsClean())

	skipped := make(map[string]string)
	for _, s := range result.FilesSkipped {
		skipped[s.Path] = s.Reason
	}
	assert.Contains(t, skipped["data/processed/1447/6.csv"], "too few rows")
	assert.Contains(t, skipped["data/processed/1447/7.csv"], "decode error")
	assert.Contains(t, skipped["data/processed/1447/notes.csv"], "month partition is not numeric")

	// The good file is still persisted.
	assert.Equal(t, 1, result.EntriesAdded)
	assert.Contains(t, readFile(t, fs, dailyFile), "1447-05-01")

	logger.AssertContains(t, "Skipping source table")
	logger.AssertContains(t, "Reconciliation complete")
	logger.AssertNotContains(t, "Omar")
}

func TestRunSkipsFilesOutsideYearDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/5.csv", sheet("Omar,10,Sara,8,7,,"))
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))

	result := run(t, monthlyEngine(t, fs))

	assert.Equal(t, 2, result.FilesFound)
	assert.Equal(t, 1, result.FilesProcessed)
	require.Len(t, result.FilesSkipped, 1)
	assert.Equal(t, "data/processed/5.csv", result.FilesSkipped[0].Path)
	assert.Contains(t, result.FilesSkipped[0].Reason, "year partition is not numeric")
	assert.Equal(t, []string{usersFile, "data/database/1447/5.csv"}, result.Written)

	exists, err := afero.Exists(fs, "data/database/processed/5.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunYearPartition(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1446/12.csv", sheet("Old,10,Sara,1,1,,"))
	writeFile(t, fs, "data/processed/1447/1.csv", sheet("Ali,10,Sara,8,7,,"))
	writeFile(t, fs, "data/processed/1447/nested/2.csv", sheet("Deep,10,Sara,8,7,,"))

	result := run(t, ledgerEngine(t, fs, reconciler.WithYear("1447")))

	assert.Equal(t, 1, result.FilesFound)
	assert.Equal(t, 2, result.PersonsCreated)
	assert.Equal(t,
		"entry_id,student_id,teacher_id,entry_date,hifz,murajaah\n1,1,1,1447-01-01,8,7\n",
		readFile(t, fs, dailyFile))
}

func TestRunProcessesFilesInPathOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/6.csv", sheet("Omar,10,Sara,1,,,"))
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Hind,1,,,"))

	engine := ledgerEngine(t, fs)
	run(t, engine)

	// "5.csv" sorts before "6.csv", so Ali and Hind get the first ids.
	id, ok := engine.State().Identities.Lookup("Ali", identity.RoleStudent)
	require.True(t, ok)
	assert.Equal(t, 1, id)
	id, ok = engine.State().Identities.Lookup("Omar", identity.RoleStudent)
	require.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestRunMalformedPriorTableIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, personFile, "person_id,name,role\nabc,Ali,student\n")
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))

	_, err := ledgerEngine(t, fs).Run(context.Background())
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)

	exists, statErr := afero.Exists(fs, dailyFile)
	require.NoError(t, statErr)
	assert.False(t, exists)
}

func TestRunMissingSourceDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := ledgerEngine(t, fs).Run(context.Background())
	require.Error(t, err)
	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, sourceDir, notFound.Name)
	assert.True(t, errors.IsNotFound(err))
}

func TestRunDryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))

	result := run(t, ledgerEngine(t, fs, reconciler.WithDryRun(true)))

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.EntriesAdded)
	assert.Empty(t, result.Written)
	for _, path := range []string{personFile, dailyFile} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
}

func TestRunMonthlyEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet(
		"Ali,10,Sara,8,7,,",
		"Omar,11,Sara,,,3,",
	))

	result := run(t, monthlyEngine(t, fs))

	assert.Equal(t, reconciler.LayoutMonthly, result.Layout)
	assert.Equal(t, 2, result.EntriesAdded)
	assert.Equal(t, []string{usersFile, "data/database/1447/5.csv"}, result.Written)
	assert.Equal(t, "user_id,name,birth_year\n1,Ali,\n-1,Sara,\n2,Omar,\n", readFile(t, fs, usersFile))
	assert.Equal(t,
		"student_id,teacher_id,day,hifz,murajaah\n1,-1,1,8,7\n2,-1,2,3,\n",
		readFile(t, fs, "data/database/1447/5.csv"))
}

func TestRunMonthlyLastWriteWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet(
		"Ali,10,Sara,8,7,,",
		"Omar,11,Sara,2,,,",
		"Ali,10,Sara,9,,,",
	))

	result := run(t, monthlyEngine(t, fs))

	assert.Equal(t, 2, result.EntriesAdded)
	assert.Equal(t, 1, result.EntriesReplaced)
	// The replacement keeps the position of the fact it replaced.
	assert.Equal(t,
		"student_id,teacher_id,day,hifz,murajaah\n1,-1,1,9,\n2,-1,1,2,\n",
		readFile(t, fs, "data/database/1447/5.csv"))
}

func TestRunMonthlyRegenerates(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))
	run(t, monthlyEngine(t, fs))

	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,,,4,4"))
	result := run(t, monthlyEngine(t, fs))

	assert.Equal(t, 2, result.PersonsLoaded)
	assert.Zero(t, result.PersonsCreated)
	assert.Zero(t, result.EntriesLoaded)
	assert.Equal(t,
		"student_id,teacher_id,day,hifz,murajaah\n1,-1,2,4,4\n",
		readFile(t, fs, "data/database/1447/5.csv"))

	// An emptied sheet still rewrites its partition.
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,,,,"))
	run(t, monthlyEngine(t, fs))
	assert.Equal(t, "student_id,teacher_id,day,hifz,murajaah\n", readFile(t, fs, "data/database/1447/5.csv"))
}

func TestRunWithInjectedState(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "data/processed/1447/5.csv", sheet("Ali,10,Sara,8,7,,"))

	state := reconciler.NewState(reconciler.LayoutLedger)
	require.NoError(t, state.Identities.Add(identity.Person{ID: 7, Name: "Ali", Role: identity.RoleStudent}))
	state.Entries.Seed(entries.Key{StudentID: 7, TeacherID: 1, Locator: "1447-05-01"}, 40)

	result := run(t, ledgerEngine(t, fs, reconciler.WithState(state), reconciler.WithDryRun(true)))

	assert.Equal(t, 1, result.PersonsLoaded)
	assert.Equal(t, 1, result.EntriesLoaded)
	assert.Equal(t, 1, result.PersonsCreated)
	assert.Equal(t, 1, result.EntriesSkipped)
	assert.Zero(t, result.EntriesAdded)
}

func TestNewValidatesOptions(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := reconciler.New(fs, reconciler.WithLayout("weekly"))
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(fs, reconciler.WithSourceDir(""))
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(fs,
		reconciler.WithLayout(reconciler.LayoutMonthly),
		reconciler.WithState(reconciler.NewState(reconciler.LayoutLedger)))
	assert.True(t, errors.IsValidationError(err))
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    reconciler.Layout
		wantErr bool
	}{
		{"", reconciler.LayoutLedger, false},
		{"ledger", reconciler.LayoutLedger, false},
		{" Monthly ", reconciler.LayoutMonthly, false},
		{"weekly", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := reconciler.ParseLayout(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, identity.SchemeSigned, reconciler.LayoutMonthly.Scheme())
	assert.Equal(t, entries.PolicySkipDuplicate, reconciler.LayoutLedger.Policy())
}
