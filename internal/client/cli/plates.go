package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/submit"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/view"
	"github.com/dmitrijs2005/premiumkeeper/internal/common"
)

const timeLayout = "2006-01-02 15:04:05"

// Companies lists the companies in the catalog.
func (a *App) Companies(ctx context.Context) error {
	cat, err := a.api.Catalog(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	for _, c := range cat.Companies() {
		fmt.Fprintf(a.out, "%s (%d)\n", c, len(cat[c]))
	}
	return nil
}

// Show renders one company's plates and the premium total.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: show <company>")
		return nil
	}
	v, err := a.renderer.Load(ctx, strings.Join(args, " "))
	a.printView(v)
	a.printSummary()
	return err
}

func (a *App) printView(v *view.View) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPLATE\tDATE\tPREMIUM\tCHECKED AT")
	for _, r := range v.Rows {
		switch {
		case r.NoData:
			fmt.Fprintf(tw, "\t%s\t\t\t\n", view.NoDataText)
		case r.Err != "":
			fmt.Fprintf(tw, "\tFejl: %s\t\t\t\n", r.Err)
		default:
			mark := "[ ]"
			if r.Checked {
				mark = "[x]"
			}
			ts := ""
			if r.Timestamp != nil {
				ts = r.Timestamp.Local().Format(timeLayout)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, r.Plate, r.Date, view.FormatAmount(r.Premium), ts)
		}
	}
	_ = tw.Flush()
}

func (a *App) printSummary() {
	fmt.Fprintf(a.out, "Total præmie: %s\n", view.FormatDKK(a.renderer.Summary()))
}

// Check marks or unmarks a plate of the shown company.
func (a *App) Check(ctx context.Context, args []string, checked bool) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: check|uncheck <plate>")
		return nil
	}
	if _, err := a.renderer.SetChecked(ctx, args[0], checked); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.printSummary()
	return nil
}

// Premium stores the premium typed for a plate. Unparseable amounts are
// stored as 0.
func (a *App) Premium(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: premium <plate> <amount>")
		return nil
	}
	if _, err := a.renderer.SetPremium(ctx, args[0], args[1]); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	a.printSummary()
	return nil
}

func (a *App) Summary(ctx context.Context) error {
	a.printSummary()
	return nil
}

// Send opens the submission form for a plate of the shown company and
// confirms it with the given amount, or prompts for one.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: send <plate> [amount]")
		return nil
	}
	v := a.renderer.Current()
	if v == nil {
		fmt.Fprintln(a.out, "Show a company first: show <company>")
		return nil
	}
	if _, ok := v.Row(args[0]); !ok {
		fmt.Fprintf(a.out, "Unknown plate %s in %s\n", args[0], v.Company)
		return fmt.Errorf("%w: plate %q in %s", common.ErrorNotFound, args[0], v.Company)
	}
	if err := a.flow.Open(v.Company, args[0]); err != nil {
		return err
	}

	amount := ""
	if len(args) == 2 {
		amount = args[1]
	} else {
		f := a.flow.Form()
		var err error
		amount, err = GetSimpleText(a.reader, fmt.Sprintf("Præmie for %s (%s, %s)", f.Plate, f.Company, f.User), a.out)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	}
	return a.Confirm(ctx, []string{amount})
}

// Confirm retries the open submission form with an amount.
func (a *App) Confirm(ctx context.Context, args []string) error {
	amount := strings.Join(args, "")
	res, err := a.flow.Confirm(ctx, amount)
	if err != nil {
		if errors.Is(err, submit.ErrNoForm) {
			fmt.Fprintln(a.out, "No open form: send <plate> first")
		}
		return err
	}
	if res.Provision != "" {
		fmt.Fprintf(a.out, "Provision: %s\n", res.Provision)
	}
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	a.flow.Cancel()
	return nil
}
