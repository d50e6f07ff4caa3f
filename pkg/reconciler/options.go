package reconciler

import (
	"github.com/halaqa/halaqa/pkg/constants"
	"github.com/halaqa/halaqa/pkg/errors"
)

// options configures an Engine.
type options struct {
	layout     Layout
	sourceDir  string
	year       string
	personFile string
	dailyFile  string
	usersFile  string
	outputDir  string
	dryRun     bool
	state      *State
}

func defaultOptions() *options {
	return &options{
		layout:     LayoutLedger,
		sourceDir:  constants.DefaultSourceDir,
		personFile: constants.DefaultPersonFile,
		dailyFile:  constants.DefaultDailyFile,
		usersFile:  constants.DefaultUsersFile,
		outputDir:  constants.DefaultOutputDir,
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.state != nil && o.state.Layout != o.layout {
		return nil, &errors.ValidationError{
			Field:   "state",
			Value:   o.state.Layout,
			Message: "layout of injected state does not match " + o.layout.String(),
		}
	}
	return o, nil
}

// WithLayout sets the deployment layout.
func WithLayout(layout Layout) Option {
	return func(o *options) error {
		if layout != LayoutLedger && layout != LayoutMonthly {
			return errors.NewValidationError("layout", layout, "must be ledger or monthly")
		}
		o.layout = layout
		return nil
	}
}

// WithSourceDir sets the root of the year/month source tree.
func WithSourceDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return &errors.ValidationError{Field: "source_dir", Message: "cannot be empty"}
		}
		o.sourceDir = dir
		return nil
	}
}

// WithYear restricts discovery to one year partition and uses year as the
// date context of every source.
func WithYear(year string) Option {
	return func(o *options) error {
		o.year = year
		return nil
	}
}

// WithPersonFile sets the ledger identity table.
func WithPersonFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "person_file", Message: "cannot be empty"}
		}
		o.personFile = path
		return nil
	}
}

// WithDailyFile sets the ledger fact table.
func WithDailyFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "daily_file", Message: "cannot be empty"}
		}
		o.dailyFile = path
		return nil
	}
}

// WithUsersFile sets the signed identity table of the monthly layout.
func WithUsersFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "users_file", Message: "cannot be empty"}
		}
		o.usersFile = path
		return nil
	}
}

// WithOutputDir sets the root of the monthly fact partitions.
func WithOutputDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return &errors.ValidationError{Field: "output_dir", Message: "cannot be empty"}
		}
		o.outputDir = dir
		return nil
	}
}

// WithDryRun parses everything but writes nothing.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithState injects prior state instead of loading it from the persisted
// tables. The state's layout must match the engine's.
func WithState(state *State) Option {
	return func(o *options) error {
		if state == nil {
			return &errors.ValidationError{Field: "state", Message: "cannot be nil"}
		}
		o.state = state
		return nil
	}
}
