package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/api"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/config"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/overrides"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/session"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/submit"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/view"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
)

// serverAPI is the part of api.Client the CLI uses.
type serverAPI interface {
	view.CatalogFetcher
	submit.Gateway
	SetToken(token string)
	Premiums(ctx context.Context) ([]premium.SubmissionRecord, error)
	Export(ctx context.Context) ([]byte, error)
	ExportArchive(ctx context.Context) (api.ArchiveLink, error)
	MergeCatalog(ctx context.Context, company string, records []premium.PlateRecord) (int, error)
}

type App struct {
	config   *config.Config
	api      serverAPI
	store    *overrides.Store
	session  *session.Session
	renderer *view.Renderer
	flow     *submit.Flow
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires the CLI against the server in c and the given override store.
func NewApp(c *config.Config, store *overrides.Store) *App {
	return newApp(c, api.New(c.ServerEndpointAddr, c.RequestTimeout), store, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, client serverAPI, store *overrides.Store, in io.Reader, out io.Writer) *App {
	a := &App{
		config:  c,
		api:     client,
		store:   store,
		session: &session.Session{},
		reader:  bufio.NewReader(in),
		out:     out,
	}
	a.renderer = view.NewRenderer(client, store)
	a.flow = submit.NewFlow(client, a.session, submit.Options{
		UseForm:         c.UseForm,
		Reload:          a.reload,
		Notify:          func(msg string) { log.Println(msg) },
		SessionRejected: a.dropSession,
	})
	return a
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	log.Println("Welcome to premiumkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool { return a.session.Authenticated() }

func (a *App) isAdmin() bool { return a.session.IsAdmin() }

func (a *App) getStatus() string {
	s := a.session.Email()
	if v := a.renderer.Current(); v != nil {
		if s != "" {
			s += " "
		}
		s += v.Company
	}
	if a.flow.State() == submit.FormOpen {
		s += " *" + a.flow.Form().Plate
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// reload re-renders the current company after an accepted submission.
func (a *App) reload(ctx context.Context) error {
	v := a.renderer.Current()
	if v == nil {
		return nil
	}
	return a.Show(ctx, []string{v.Company})
}
