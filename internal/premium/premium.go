// Package premium holds the domain types shared by the server and the CLI:
// catalog records, per-plate overrides and the submitted premium records.
package premium

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/shopspring/decimal"
)

// PlateRecord is one registration entry of the plate catalog.
type PlateRecord struct {
	Plate string `json:"plate"`
	Date  string `json:"date"`
}

// Catalog maps a company name to its registrations, in file order.
type Catalog map[string][]PlateRecord

// Companies returns the catalog keys in the order they should be listed.
func (c Catalog) Companies() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CompaniesForPlate lists every company that has plate registered.
func (c Catalog) CompaniesForPlate(plate string) []string {
	var out []string
	for _, company := range c.Companies() {
		for _, rec := range c[company] {
			if rec.Plate == plate {
				out = append(out, company)
				break
			}
		}
	}
	return out
}

// PlateOverride is the broker's local state for one plate.
type PlateOverride struct {
	Checked   bool       `json:"checked"`
	Premium   float64    `json:"premium"`
	Timestamp *time.Time `json:"timestamp"`
}

// OverrideUpdate is a partial change to a PlateOverride. Nil fields are kept.
type OverrideUpdate struct {
	Checked *bool
	Premium *float64
}

// Apply merges u into o. Checking a plate stamps now, unchecking clears the
// stamp. Premiums below zero are stored as zero.
func (o PlateOverride) Apply(u OverrideUpdate, now time.Time) PlateOverride {
	if u.Checked != nil {
		o.Checked = *u.Checked
		if o.Checked {
			ts := now.UTC()
			o.Timestamp = &ts
		} else {
			o.Timestamp = nil
		}
	}
	if u.Premium != nil {
		o.Premium = sanitize(*u.Premium)
	}
	return o
}

// SubmissionRecord is one row of the premium ledger. The commission is fixed
// when the record is created.
type SubmissionRecord struct {
	ID         string    `json:"id,omitempty"`
	Company    string    `json:"company"`
	Plate      string    `json:"plate"`
	Premium    float64   `json:"premium"`
	Commission float64   `json:"provision"`
	Timestamp  time.Time `json:"timestamp"`
	User       string    `json:"user"`
}

// NewSubmission builds a ledger record with its commission computed.
func NewSubmission(id, company, plate string, premium float64, user string, now time.Time) SubmissionRecord {
	return SubmissionRecord{
		ID:         id,
		Company:    company,
		Plate:      plate,
		Premium:    premium,
		Commission: Commission(premium),
		Timestamp:  now.UTC(),
		User:       user,
	}
}

var commissionRate = decimal.RequireFromString(common.CommissionRate)

// Commission returns the commission owed for premium.
func Commission(premium float64) float64 {
	f, _ := decimal.NewFromFloat(premium).Mul(commissionRate).Float64()
	return f
}

// FormatCommission renders a commission with two decimals, "10.00".
func FormatCommission(commission float64) string {
	return decimal.NewFromFloat(commission).StringFixed(2)
}

// CoercePremium turns user input into a premium. Anything that is not a
// finite, non-negative number becomes 0.
func CoercePremium(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// ParsePositivePremium parses a premium that must be present and above zero.
func ParsePositivePremium(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
