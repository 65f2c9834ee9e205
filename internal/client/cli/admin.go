package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/overrides"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/view"
	"github.com/dmitrijs2005/premiumkeeper/internal/filex"
	"github.com/dmitrijs2005/premiumkeeper/internal/netx"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
)

// ExportFileName is where the spreadsheet export is saved by default.
const ExportFileName = "premier_med_provision.xlsx"

// Ledger prints every submission recorded on the server.
func (a *App) Ledger(ctx context.Context) error {
	recs, err := a.api.Premiums(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No submissions")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tPLATE\tPREMIUM\tPROVISION\tTIMESTAMP\tUSER")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Company, r.Plate,
			view.FormatAmount(r.Premium),
			premium.FormatCommission(r.Commission),
			r.Timestamp.Local().Format(timeLayout), r.User)
	}
	return tw.Flush()
}

// Export downloads the spreadsheet export to the given path.
func (a *App) Export(ctx context.Context, args []string) error {
	path := ExportFileName
	if len(args) > 0 {
		path = args[0]
	}
	data, err := a.api.Export(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o644); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(data))
	return nil
}

// Archive stores the export in object storage on the server side and prints
// the temporary link. With a path argument the archived copy is downloaded.
func (a *App) Archive(ctx context.Context, args []string) error {
	link, err := a.api.ExportArchive(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Archived %d records as %s\n%s\n(valid %ds)\n", link.Records, link.Key, link.URL, link.ExpiresIn)

	if len(args) == 0 {
		return nil
	}
	data, err := netx.DownloadPresignedURL(ctx, nil, link.URL)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := filex.WriteFileAtomic(args[0], data, 0o644); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", args[0], len(data))
	return nil
}

// Import loads an override snapshot from a file, or from pasted JSON when no
// file is given, and replaces the companies it contains.
func (a *App) Import(ctx context.Context, args []string) error {
	var raw []byte
	if len(args) > 0 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		raw = b
	} else {
		text, err := GetMultiline(a.reader, "Paste override JSON", a.out)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		raw = []byte(text)
	}

	var snap overrides.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("Ugyldig JSON: %v", err)
		return err
	}
	if err := a.store.Import(ctx, snap); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Imported %d companies\n", len(snap))
	return a.reload(ctx)
}

// Dump writes the local override store as JSON to a file or to the output.
func (a *App) Dump(ctx context.Context, args []string) error {
	snap, err := a.store.Export(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, string(data))
		return nil
	}
	if err := filex.WriteFileAtomic(args[0], data, 0o600); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", args[0])
	return nil
}

// Overview shows every company's plates with their local overrides.
func (a *App) Overview(ctx context.Context) error {
	views, err := a.renderer.Overview(ctx)
	if err != nil {
		return err
	}
	for i := range views {
		fmt.Fprintf(a.out, "== %s ==\n", views[i].Company)
		a.printView(&views[i])
	}
	return nil
}

// Merge adds the plates in a JSON file to a company of the server catalog:
// merge <company> <file>.
func (a *App) Merge(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: merge <company> <file.json>")
		return nil
	}
	path := args[len(args)-1]
	company := strings.Join(args[:len(args)-1], " ")

	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	var recs []premium.PlateRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		log.Printf("Ugyldig JSON: %v", err)
		return err
	}

	n, err := a.api.MergeCatalog(ctx, company, recs)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Fprintf(a.out, "Added %d plates to %s\n", n, company)
	return nil
}
