package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"miroteka-web/core"
)

const (
	exitOK       = 0
	exitRejected = 1 // backend answered, but not with 2xx
	exitError    = 2
)

const usage = `usage: mirotekactl [flags] <command> [args]

commands:
  me                                   print the id of the logged-in user
  profile <id>                         show a profile ("me" for your own)
  event <id>                           show an event
  events <recommendations|friends|groups>
  tags                                 list event tags
  join-event <id> | leave-event <id>
  group <id>
  join-group <id> | leave-group <id>
  accept-invite <token>
  search users|groups <query>
  login <email|phone_number> <login> <password>
  logout
`

// command runs against a client-side API and returns an exit code.
type command struct {
	args int
	run  func(ctx context.Context, a *core.API, args []string, out *printer) int
}

var commands = map[string]command{
	"me": {0, func(ctx context.Context, a *core.API, _ []string, out *printer) int {
		return printValue[core.Identity](out)(core.ResolveCurrentUser(ctx, a.Dispatcher()))
	}},
	"profile": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return printValue[core.Profile](out)(a.Profile(ctx, args[0]))
	}},
	"event": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return printValue[core.Event](out)(a.Event(ctx, args[0]))
	}},
	"events": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return printValue[core.EventsPage](out)(a.Events(ctx, core.EventFilter(args[0])))
	}},
	"tags": {0, func(ctx context.Context, a *core.API, _ []string, out *printer) int {
		return printValue[[]string](out)(a.Tags(ctx))
	}},
	"join-event": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return out.action(a.JoinEvent(ctx, args[0]))
	}},
	"leave-event": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return out.action(a.LeaveEvent(ctx, args[0]))
	}},
	"group": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return printValue[core.Group](out)(a.Group(ctx, args[0]))
	}},
	"join-group": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return out.action(a.JoinGroup(ctx, args[0]))
	}},
	"leave-group": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return out.action(a.LeaveGroup(ctx, args[0]))
	}},
	"accept-invite": {1, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		return out.action(a.AcceptInvite(ctx, args[0]))
	}},
	"search": {2, func(ctx context.Context, a *core.API, args []string, out *printer) int {
		switch args[0] {
		case "users":
			return printValue[[]core.UserSummary](out)(a.SearchUsers(ctx, args[1]))
		case "groups":
			return printValue[[]core.Group](out)(a.SearchGroups(ctx, args[1]))
		default:
			fmt.Fprintf(out.stderr, "unknown search kind %q\n", args[0])
			return exitError
		}
	}},
}

func run(ctx context.Context, cfg core.Config, argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mirotekactl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	backend := fs.String("backend", cfg.BackendURL, "backend origin")
	cookieFile := fs.String("cookie-file", cfg.CookieFile, "file holding the token cookie")
	field := fs.String("field", "", "gjson path to extract from the output")
	if err := fs.Parse(argv); err != nil {
		return exitError
	}
	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		return exitError
	}
	cfg.BackendURL = *backend
	cfg.CookieFile = *cookieFile

	gw := core.NewGateway(cfg.Gateway())
	out := &printer{stdout: stdout, stderr: stderr, field: *field}
	name, args := args[0], args[1:]

	switch name {
	case "login":
		return login(ctx, gw, cfg.CookieFile, args, out)
	case "logout":
		if err := core.RemoveCookieFile(cfg.CookieFile); err != nil {
			fmt.Fprintf(stderr, "logout: %v\n", err)
			return exitError
		}
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return exitError
	}
	if len(args) != cmd.args {
		fmt.Fprintf(stderr, "%s: expected %d argument(s), got %d\n", name, cmd.args, len(args))
		return exitError
	}
	api := core.NewAPI(gw.ClientDispatcher(credentials(cfg)))
	return cmd.run(ctx, api, args, out)
}

// credentials prefers an explicit cookie string over the cookie file.
func credentials(cfg core.Config) core.CredentialSource {
	if strings.TrimSpace(cfg.CookieString) != "" {
		return core.CookieStringSource(cfg.CookieString)
	}
	return core.CookieFileSource{Path: cfg.CookieFile}
}

func login(ctx context.Context, gw *core.Gateway, cookieFile string, args []string, out *printer) int {
	if len(args) != 3 {
		fmt.Fprintln(out.stderr, "login: expected <email|phone_number> <login> <password>")
		return exitError
	}
	kind := core.LoginKind(args[0])
	res, err := core.NewAuthClient(gw).Login(ctx, kind, args[1], args[2])
	if err != nil {
		var be *core.BackendError
		if errors.As(err, &be) {
			fmt.Fprintf(out.stderr, "login: %s\n", be.Detail)
			return exitRejected
		}
		fmt.Fprintf(out.stderr, "login: %v\n", err)
		return exitError
	}
	if err := core.SaveCookieFile(cookieFile, res.Credential()); err != nil {
		fmt.Fprintf(out.stderr, "login: %v\n", err)
		return exitError
	}
	fmt.Fprintln(out.stdout, "ok")
	return exitOK
}

type printer struct {
	stdout io.Writer
	stderr io.Writer
	field  string
}

// printValue prints a decoded body, nil as a rejection.
func printValue[T any](out *printer) func(*T, error) int {
	return func(v *T, err error) int {
		if err != nil {
			return out.fail(err)
		}
		if v == nil {
			fmt.Fprintln(out.stderr, "rejected")
			return exitRejected
		}
		return out.print(v)
	}
}

func (p *printer) print(v any) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return p.fail(err)
	}
	if p.field != "" {
		fmt.Fprintln(p.stdout, gjson.GetBytes(b, p.field).String())
		return exitOK
	}
	fmt.Fprintln(p.stdout, string(b))
	return exitOK
}

func (p *printer) action(ok bool, err error) int {
	if err != nil {
		return p.fail(err)
	}
	if !ok {
		fmt.Fprintln(p.stderr, "rejected")
		return exitRejected
	}
	fmt.Fprintln(p.stdout, "ok")
	return exitOK
}

func (p *printer) fail(err error) int {
	if errors.Is(err, core.ErrNoToken) {
		fmt.Fprintln(p.stderr, "not logged in: run mirotekactl login")
		return exitError
	}
	fmt.Fprintf(p.stderr, "error: %v\n", err)
	return exitError
}
