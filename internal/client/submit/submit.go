// Package submit drives one premium submission from the CLI: open the form
// for a plate, confirm a premium, send it, and report the outcome.
//
// The flow never retries on its own. A rejected submission returns to the
// open form so the user can confirm again.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/api"
	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
)

type State int

const (
	Idle State = iota
	FormOpen
	Submitting
	Accepted
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FormOpen:
		return "form-open"
	case Submitting:
		return "submitting"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// User-facing notices.
const (
	NoticeLoginRequired = "Du skal være logget ind for at sende en præmie."
	NoticeMissingFields = "Vælg venligst en nummerplade, indtast en præmie, og log ind."
	NoticeSent          = "Præmie sendt!"
	NoticeRejected      = "Fejl ved indsendelse af præmie."
	NoticeTechnical     = "Teknisk fejl - prøv igen senere."
	NoticeNoAccess      = "Du har ikke adgang til denne side."
	NoticeLoginAgain    = "Log venligst ind igen og bekræft præmien."
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoForm           = errors.New("no submission form is open")
)

type Gateway interface {
	SubmitPremium(ctx context.Context, req api.SubmitRequest) (api.SubmitResult, error)
	SubmitForm(ctx context.Context, req api.SubmitRequest) (api.SubmitResult, error)
}

type Identity interface {
	Authenticated() bool
	Email() string
}

// Form holds the read-only fields attached to a submission.
type Form struct {
	Company string
	Plate   string
	User    string
}

type Options struct {
	// UseForm sends through the hosted form endpoint instead of the JSON API.
	UseForm bool
	// Reload is called after an accepted submission.
	Reload func(ctx context.Context) error
	Notify func(msg string)
	// SessionRejected is called when the server refuses the user's identity.
	// The form stays open for a confirm after the next login.
	SessionRejected func()
	OnState         func(State)
}

type Flow struct {
	gateway Gateway
	session Identity
	opts    Options

	state State
	form  Form
}

func NewFlow(gateway Gateway, session Identity, opts Options) *Flow {
	if opts.Notify == nil {
		opts.Notify = func(string) {}
	}
	return &Flow{gateway: gateway, session: session, opts: opts}
}

func (f *Flow) State() State { return f.state }

// Form returns the open form; it is zero unless the state is FormOpen.
func (f *Flow) Form() Form { return f.form }

func (f *Flow) setState(s State) {
	f.state = s
	if f.opts.OnState != nil {
		f.opts.OnState(s)
	}
}

// Open shows the form for plate. Without a signed-in user the flow stays
// Idle and ErrNotAuthenticated is returned.
func (f *Flow) Open(company, plate string) error {
	if !f.session.Authenticated() {
		f.opts.Notify(NoticeLoginRequired)
		f.reset()
		return ErrNotAuthenticated
	}
	f.form = Form{Company: company, Plate: plate, User: f.session.Email()}
	f.setState(FormOpen)
	return nil
}

// Cancel hides the form.
func (f *Flow) Cancel() { f.reset() }

func (f *Flow) reset() {
	f.form = Form{}
	if f.state != Idle {
		f.setState(Idle)
	}
}

// Confirm sends the open form with premium. On success the form is reset,
// the flow returns to Idle and Reload runs. On failure the form stays open.
func (f *Flow) Confirm(ctx context.Context, raw string) (api.SubmitResult, error) {
	if f.state != FormOpen {
		return api.SubmitResult{}, ErrNoForm
	}
	if !f.session.Authenticated() {
		f.opts.Notify(NoticeLoginRequired)
		return api.SubmitResult{}, ErrNotAuthenticated
	}
	f.form.User = f.session.Email()

	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	amount, ok := premium.ParsePositivePremium(raw)
	if f.form.Plate == "" || f.form.User == "" || !ok {
		f.opts.Notify(NoticeMissingFields)
		return api.SubmitResult{}, fmt.Errorf("%w: premium %q", common.ErrorValidation, raw)
	}

	req := api.SubmitRequest{
		Company: f.form.Company,
		Plate:   f.form.Plate,
		Premium: amount,
		User:    f.form.User,
	}

	f.setState(Submitting)
	send := f.gateway.SubmitPremium
	if f.opts.UseForm {
		send = f.gateway.SubmitForm
	}
	res, err := send(ctx, req)
	if err != nil {
		f.reject(err)
		return api.SubmitResult{}, err
	}

	f.setState(Accepted)
	f.opts.Notify(NoticeSent)
	f.reset()
	if f.opts.Reload != nil {
		if err := f.opts.Reload(ctx); err != nil {
			return res, fmt.Errorf("reload: %w", err)
		}
	}
	return res, nil
}

func (f *Flow) reject(err error) {
	f.setState(Rejected)

	switch {
	case errors.Is(err, common.ErrorUnauthenticated), errors.Is(err, common.ErrorForbidden):
		f.opts.Notify(NoticeNoAccess)
		f.opts.Notify(NoticeLoginAgain)
		if f.opts.SessionRejected != nil {
			f.opts.SessionRejected()
		}
	case errors.Is(err, common.ErrorUnavailable):
		f.opts.Notify(NoticeTechnical)
	default:
		f.opts.Notify(NoticeRejected)
	}
	f.setState(FormOpen)
}
