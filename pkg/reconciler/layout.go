package reconciler

import (
	"strings"

	"github.com/halaqa/halaqa/pkg/entries"
	"github.com/halaqa/halaqa/pkg/errors"
	"github.com/halaqa/halaqa/pkg/identity"
)

// Layout selects one deployment pairing of identity scheme, conflict
// policy and persisted file formats. Prior-state files of one layout are
// not readable by the other.
type Layout string

const (
	// LayoutLedger keeps per-role ids in a person_id,name,role table and
	// appends new facts, keyed by absolute date, to a single ledger.
	LayoutLedger Layout = "ledger"
	// LayoutMonthly keeps signed ids in a user_id,name,birth_year table and
	// regenerates one fact file per year/month, keyed by day of month.
	LayoutMonthly Layout = "monthly"
)

// String returns the layout name.
func (l Layout) String() string {
	return string(l)
}

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutLedger, LayoutMonthly:
		return l, nil
	case "":
		return LayoutLedger, nil
	default:
		return "", errors.NewValidationError("layout", s, "must be ledger or monthly")
	}
}

// Scheme returns the identity scheme used by the layout.
func (l Layout) Scheme() identity.Scheme {
	if l == LayoutMonthly {
		return identity.SchemeSigned
	}
	return identity.SchemePerRole
}

// Policy returns the conflict policy used by the layout.
func (l Layout) Policy() entries.Policy {
	if l == LayoutMonthly {
		return entries.PolicyLastWriteWins
	}
	return entries.PolicySkipDuplicate
}
