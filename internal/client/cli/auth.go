package cli

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/submit"
	"github.com/dmitrijs2005/premiumkeeper/internal/common"
)

// getToken is an indirection used to facilitate testing.
var getToken = GetToken

// Login signs in with an identity token given as an argument or pasted at the
// prompt. Users with neither the broker nor the admin role are refused.
func (a *App) Login(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = strings.Join(args, " ")
	} else {
		b, err := getToken(a.out)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		token = string(b)
		common.WipeByteArray(b)
	}

	if err := a.session.Login(token); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			log.Println(submit.NoticeNoAccess)
			_ = a.Logout(ctx)
		} else {
			log.Printf("Login unsuccessful: %v", err)
		}
		return err
	}

	a.api.SetToken(a.session.Token())
	log.Printf("Logged in as %s", a.session.Email())
	return nil
}

// dropSession forgets the token but keeps the local overrides and any open
// submission form, so the user can log in again and confirm.
func (a *App) dropSession() {
	a.session.Logout()
	a.api.SetToken("")
}

// Logout forgets the token and wipes the local override store.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	a.api.SetToken("")
	a.flow.Cancel()
	if err := a.store.Clear(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}
