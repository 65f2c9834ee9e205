// Package view merges the plate catalog with the broker's local overrides
// into display rows and keeps the running premium total.
package view

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NoDataText is shown for a company the catalog does not list.
const NoDataText = "Ingen data"

type CatalogFetcher interface {
	Catalog(ctx context.Context) (premium.Catalog, error)
}

type OverrideStore interface {
	Get(ctx context.Context, company string) (map[string]premium.PlateOverride, error)
	Set(ctx context.Context, company, plate string, u premium.OverrideUpdate) (premium.PlateOverride, error)
}

// Row is one rendered plate. Placeholder rows set NoData or Err and carry
// no plate.
type Row struct {
	Company   string
	Plate     string
	Date      string
	Checked   bool
	Premium   float64
	Timestamp *time.Time

	NoData bool
	Err    string
}

func (r Row) placeholder() bool { return r.NoData || r.Err != "" }

type View struct {
	Company string
	Rows    []Row
}

// Summary is the sum of the premiums of the rendered rows.
func (v *View) Summary() float64 {
	sum := decimal.Zero
	for _, r := range v.Rows {
		sum = sum.Add(decimal.NewFromFloat(r.Premium))
	}
	f, _ := sum.Float64()
	return f
}

// Row returns the rendered row for plate. Placeholder rows never match.
func (v *View) Row(plate string) (Row, bool) {
	i, ok := v.row(plate)
	if !ok {
		return Row{}, false
	}
	return v.Rows[i], true
}

func (v *View) row(plate string) (int, bool) {
	for i, r := range v.Rows {
		if !r.placeholder() && r.Plate == plate {
			return i, true
		}
	}
	return 0, false
}

// Renderer holds the view of the company currently shown.
type Renderer struct {
	catalog CatalogFetcher
	store   OverrideStore
	current *View
}

func NewRenderer(catalog CatalogFetcher, store OverrideStore) *Renderer {
	return &Renderer{catalog: catalog, store: store}
}

// Load renders company. A catalog fetch failure is not fatal: the view gets a
// single error row and the error is returned for display.
func (r *Renderer) Load(ctx context.Context, company string) (*View, error) {
	v := &View{Company: company}
	r.current = v

	cat, err := r.catalog.Catalog(ctx)
	if err != nil {
		log.Printf("Fejl ved indlæsning af plader: %v", err)
		v.Rows = []Row{{Company: company, Err: err.Error()}}
		return v, fmt.Errorf("load catalog: %w", err)
	}

	rows, err := r.rows(ctx, company, cat)
	if err != nil {
		v.Rows = []Row{{Company: company, Err: err.Error()}}
		return v, err
	}
	v.Rows = rows
	return v, nil
}

func (r *Renderer) rows(ctx context.Context, company string, cat premium.Catalog) ([]Row, error) {
	records, ok := cat[company]
	if !ok || len(records) == 0 {
		return []Row{{Company: company, NoData: true}}, nil
	}

	overrides, err := r.store.Get(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		o := overrides[rec.Plate]
		rows = append(rows, Row{
			Company:   company,
			Plate:     rec.Plate,
			Date:      rec.Date,
			Checked:   o.Checked,
			Premium:   o.Premium,
			Timestamp: o.Timestamp,
		})
	}
	return rows, nil
}

// Current is the last loaded view, or nil.
func (r *Renderer) Current() *View { return r.current }

// Summary is the total of the current view, 0 before the first Load.
func (r *Renderer) Summary() float64 {
	if r.current == nil {
		return 0
	}
	return r.current.Summary()
}

func (r *Renderer) SetChecked(ctx context.Context, plate string, checked bool) (Row, error) {
	return r.update(ctx, plate, premium.OverrideUpdate{Checked: &checked})
}

// SetPremium stores raw as the plate's premium. Input that is not a
// non-negative number is stored as 0.
func (r *Renderer) SetPremium(ctx context.Context, plate, raw string) (Row, error) {
	p := premium.CoercePremium(raw)
	return r.update(ctx, plate, premium.OverrideUpdate{Premium: &p})
}

func (r *Renderer) update(ctx context.Context, plate string, u premium.OverrideUpdate) (Row, error) {
	if r.current == nil {
		return Row{}, fmt.Errorf("%w: no company loaded", common.ErrorValidation)
	}
	i, ok := r.current.row(plate)
	if !ok {
		return Row{}, fmt.Errorf("%w: plate %q in %s", common.ErrorNotFound, plate, r.current.Company)
	}

	o, err := r.store.Set(ctx, r.current.Company, plate, u)
	if err != nil {
		return Row{}, err
	}

	row := &r.current.Rows[i]
	row.Checked = o.Checked
	row.Premium = o.Premium
	row.Timestamp = o.Timestamp
	return *row, nil
}

// Overview renders every catalog company with its overrides, in catalog
// company order.
func (r *Renderer) Overview(ctx context.Context) ([]View, error) {
	cat, err := r.catalog.Catalog(ctx)
	if err != nil {
		log.Printf("Fejl ved indlæsning af plader: %v", err)
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	out := make([]View, 0, len(cat))
	for _, company := range cat.Companies() {
		rows, err := r.rows(ctx, company, cat)
		if err != nil {
			return nil, err
		}
		out = append(out, View{Company: company, Rows: rows})
	}
	return out, nil
}

// FormatAmount renders amount with Danish separators and at most three
// decimals: 1234.5 becomes "1.234,5".
func FormatAmount(amount float64) string {
	return message.NewPrinter(language.Danish).Sprint(number.Decimal(amount, number.MaxFractionDigits(3)))
}

// FormatDKK is FormatAmount with the currency suffix, "1.500 DKK".
func FormatDKK(amount float64) string {
	return FormatAmount(amount) + " DKK"
}
