// Package entries models daily hifz/murajaah facts and the policies that
// decide what happens when two facts share a (student, teacher, day) key.
package entries

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Date locates a fact in the source calendar. Year is kept as the
// partition label because sheets use the Hijri calendar.
type Date struct {
	Year  string
	Month int
	Day   int
}

// String renders the date as YYYY-MM-DD with a zero-padded month and day.
func (d Date) String() string {
	return fmt.Sprintf("%s-%02d-%02d", d.Year, d.Month, d.Day)
}

// Key is the uniqueness key of a fact.
type Key struct {
	StudentID int
	TeacherID int
	Locator   string
}

// Fact is one scored session of a student with a teacher on one day.
// A nil score was not recorded.
type Fact struct {
	EntryID   int
	StudentID int
	TeacherID int
	Date      Date
	Hifz      *float64
	Murajaah  *float64
}

// Key returns the uniqueness key of f.
func (f Fact) Key() Key {
	return Key{StudentID: f.StudentID, TeacherID: f.TeacherID, Locator: f.Date.String()}
}

// HasScore reports whether at least one score is present.
func (f Fact) HasScore() bool {
	return f.Hifz != nil || f.Murajaah != nil
}

// ParseScore parses a score cell. Blank and non-numeric cells are absent,
// never an error. Digits of any script count, so "١٠" is 10.
func ParseScore(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(asciiDigits(cell), 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// arabicDecimalSeparator is U+066B.
const arabicDecimalSeparator = '\u066b'

// asciiDigits maps every decimal digit to its ASCII form and the Arabic
// decimal separator to a dot.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < utf8.RuneSelf:
			return r
		case r == arabicDecimalSeparator:
			return '.'
		}
		if d, ok := digitValue(r); ok {
			return '0' + rune(d)
		}
		return r
	}, s)
}

// digitValue returns the value of a decimal digit rune. Every Nd range in
// the Unicode tables is made of whole runs of ten starting at zero.
func digitValue(r rune) (int, bool) {
	for _, rng := range unicode.Nd.R16 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}

// FormatScore renders a score cell; absent scores are empty.
func FormatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Policy decides how a fact whose key is already known is handled.
type Policy int

// Policies.
const (
	// PolicySkipDuplicate keeps the first fact seen for a key, including
	// facts loaded from persisted state.
	PolicySkipDuplicate Policy = iota
	// PolicyLastWriteWins replaces an earlier fact of the same run.
	PolicyLastWriteWins
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicySkipDuplicate:
		return "skip-duplicate"
	case PolicyLastWriteWins:
		return "last-write-wins"
	}
	return "unknown"
}

// Outcome of putting a fact into a Set.
type Outcome int

// Outcomes.
const (
	Added Outcome = iota
	Skipped
	Replaced
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Skipped:
		return "skipped"
	case Replaced:
		return "replaced"
	}
	return "unknown"
}

// Set accumulates the facts accepted in a run and the keys already
// persisted by earlier runs.
type Set struct {
	policy Policy
	prior  map[Key]struct{}
	index  map[Key]int
	facts  []Fact
	nextID int
}

// NewSet creates an empty set applying policy.
func NewSet(policy Policy) *Set {
	return &Set{
		policy: policy,
		prior:  make(map[Key]struct{}),
		index:  make(map[Key]int),
		nextID: 1,
	}
}

// Policy returns the conflict policy of the set.
func (s *Set) Policy() Policy {
	return s.policy
}

// Seed records a key persisted by an earlier run and advances the entry
// id counter past entryID.
func (s *Set) Seed(key Key, entryID int) {
	s.prior[key] = struct{}{}
	if entryID >= s.nextID {
		s.nextID = entryID + 1
	}
}

// Contains reports whether key is known from prior state or this run.
func (s *Set) Contains(key Key) bool {
	if _, ok := s.prior[key]; ok {
		return true
	}
	_, ok := s.index[key]
	return ok
}

// Put applies the conflict policy to f. Accepted facts get the next entry
// id; a replacement keeps the id of the fact it replaces. The returned fact
// is the one stored, or f unchanged when it was skipped.
func (s *Set) Put(f Fact) (Fact, Outcome) {
	key := f.Key()

	if pos, ok := s.index[key]; ok {
		if s.policy == PolicyLastWriteWins {
			f.EntryID = s.facts[pos].EntryID
			s.facts[pos] = f
			return f, Replaced
		}
		return f, Skipped
	}
	if _, ok := s.prior[key]; ok && s.policy == PolicySkipDuplicate {
		return f, Skipped
	}

	f.EntryID = s.nextID
	s.nextID++
	s.index[key] = len(s.facts)
	s.facts = append(s.facts, f)
	return f, Added
}

// Facts returns the facts accepted in this run in first-accepted order.
func (s *Set) Facts() []Fact {
	out := make([]Fact, len(s.facts))
	copy(out, s.facts)
	return out
}

// Len returns the number of facts accepted in this run.
func (s *Set) Len() int {
	return len(s.facts)
}

// PriorLen returns the number of keys seeded from persisted state.
func (s *Set) PriorLen() int {
	return len(s.prior)
}
