// Package admincli implements the operator tool: resetting a password
// (which revokes the user's sessions) and listing accounts, straight
// against the configured storage.
package admincli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
	"github.com/dmitrijs2005/bacheca/internal/server/services"
)

const usage = `usage: bacheca-admin [flags] <command>

commands:
  passwd [username]   set a new password and sign the user out everywhere
  users               list accounts
`

// ErrUsage is returned for unknown commands or wrong arguments.
var ErrUsage = errors.New("invalid usage")

// getPassword is a seam over GetPassword.
var getPassword = GetPassword

// App is the operator command line. It talks to the stores directly, not
// to a running server.
type App struct {
	auth  *services.AuthService
	users users.Repository
	in    *bufio.Reader
	out   io.Writer
}

func NewApp(as *services.AuthService, repo users.Repository, in io.Reader, out io.Writer) *App {
	return &App{auth: as, users: repo, in: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	switch args[0] {
	case "passwd":
		switch len(args) {
		case 1:
			username, err := GetSimpleText(a.in, "Username", a.out)
			if err != nil {
				return err
			}
			return a.passwd(ctx, username)
		case 2:
			return a.passwd(ctx, args[1])
		default:
			fmt.Fprint(a.out, usage)
			return ErrUsage
		}
	case "users":
		return a.listUsers(ctx)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (a *App) passwd(ctx context.Context, username string) error {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no user named %q", username)
		}
		return err
	}

	pw, err := getPassword(a.out, "New password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := getPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}

	if err := a.auth.ChangeSecret(ctx, user.ID, string(pw)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "password for %s updated, existing sessions revoked\n", user.Username)
	return nil
}

func (a *App) listUsers(ctx context.Context) error {
	list, err := a.users.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN\tCREATED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", u.ID, u.Username, u.IsAdmin, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
