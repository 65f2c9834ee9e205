// Command token mints identity tokens for local development and operators.
//
//	token -s secretKey -e broker@example.com -r broker -v 12h
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/server/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out *os.File) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	secret := fs.String("s", "secretKey", "secret key shared with the server")
	email := fs.String("e", "", "user email")
	roles := fs.String("r", "broker", "comma-separated roles (broker, admin)")
	validity := fs.Duration("v", 12*time.Hour, "token validity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-e is required")
	}

	var rs []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rs = append(rs, r)
		}
	}

	tok, err := auth.GenerateToken(*email, rs, []byte(*secret), *validity)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
