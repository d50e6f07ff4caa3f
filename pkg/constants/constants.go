// Package constants provides shared constants used throughout the halaqa codebase.
// This includes the fixed source-table labels, default file locations and
// file permissions that must agree between the checker and the converter.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Source table layout constants
const (
	// StudentNameLabel is the header of the first source column
	StudentNameLabel = "اسم الطالب"

	// AgeLabel is the header of the second source column
	AgeLabel = "العمر"

	// TeacherNameLabel is the header of the third source column
	TeacherNameLabel = "الأستاذ"

	// HifzLabel labels the memorization score column of a day pair
	HifzLabel = "حفظ"

	// MurajaahLabel labels the review score column of a day pair
	MurajaahLabel = "مراجعة"

	// DefaultDayColumns is the number of day pairs in a monthly sheet
	DefaultDayColumns = 30

	// FirstDayColumn is the index of the first hifz column
	FirstDayColumn = 3

	// HeaderRow is the index of the header among non-empty rows
	HeaderRow = 1

	// FirstDataRow is the index of the first data row among non-empty rows
	FirstDataRow = 4

	// MinCheckRows is the fewest non-empty rows the checker accepts
	MinCheckRows = 2

	// MinConvertRows is the fewest non-empty rows the converter accepts
	MinConvertRows = 3

	// SourceExt is the extension of source tables
	SourceExt = ".csv"
)

// Default paths
const (
	// DefaultSourceDir is the root of the year/month source tree
	DefaultSourceDir = "data/processed"

	// DefaultPersonFile is the ledger identity table
	DefaultPersonFile = "Person.csv"

	// DefaultDailyFile is the ledger fact table
	DefaultDailyFile = "DailyEntry.csv"

	// DefaultUsersFile is the signed-id identity table of the monthly layout
	DefaultUsersFile = "data/database/Users.csv"

	// DefaultOutputDir is the root of the monthly fact partitions
	DefaultOutputDir = "data/database"

	// DefaultConfigName is the config file name searched in $HOME and .
	DefaultConfigName = ".halaqa"

	// EnvPrefix prefixes environment variables read by viper
	EnvPrefix = "HALAQA"
)
