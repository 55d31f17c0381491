// Command sitectl edits site content from a terminal. It drives the same
// reconciliation and editor logic the admin page uses, against a running
// content server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/dispulse/sitecontent/internal/adapter/driven/siteapi"
	"github.com/dispulse/sitecontent/internal/adapter/driven/tokenfile"
	"github.com/dispulse/sitecontent/internal/application"
	"github.com/dispulse/sitecontent/internal/domain/model"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// usageError marks a malformed command line. It exits with status 2.
type usageError string

func (e usageError) Error() string { return string(e) }

// session holds what every command needs once global flags are parsed.
type session struct {
	editor     *application.Editor
	reconciler *application.Reconciler
	timeout    time.Duration
	stdin      io.Reader
	stdout     io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s := &session{stdin: stdin, stdout: stdout}

	app := &cli.App{
		Name:            "sitectl",
		Usage:           "Edit site content on a running content server",
		Version:         version,
		Reader:          stdin,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "content server base URL",
				Value:   "http://localhost:3000",
				EnvVars: []string{"SITECTL_SERVER"},
			},
			&cli.StringFlag{
				Name:  "token-file",
				Usage: "token file (default: user config dir)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-command timeout",
				Value: 15 * time.Second,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			return s.init(c, stderr)
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return usageError("missing command")
			}
			return usageError(fmt.Sprintf("unknown command %q", c.Args().First()))
		},
		// Exit codes are mapped below; never let the library call os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:   "reconcile",
				Usage:  "load content and backfill missing defaults",
				Action: s.action(0, 0, s.reconcile),
			},
			{
				Name:      "login",
				Usage:     "log in; password from SITECTL_PASSWORD or stdin",
				ArgsUsage: "EMAIL",
				Action:    s.action(1, 1, s.login),
			},
			{
				Name:   "logout",
				Usage:  "forget the stored token",
				Action: s.action(0, 0, func(context.Context, cli.Args) error { return s.editor.Logout() }),
			},
			{
				Name:   "whoami",
				Usage:  "show the logged-in operator",
				Action: s.action(0, 0, s.whoami),
			},
			{
				Name:      "list",
				Usage:     "list keys and values, optionally filtered",
				ArgsUsage: "[FILTER]",
				Action:    s.action(0, 1, s.list),
			},
			{
				Name:      "get",
				Usage:     "print one value",
				ArgsUsage: "KEY",
				Action:    s.action(1, 1, s.get),
			},
			{
				Name:      "set",
				Usage:     "save one value",
				ArgsUsage: "KEY VALUE",
				Action:    s.action(2, 2, s.set),
			},
			{
				Name:   "seed-defaults",
				Usage:  "submit every default without overwriting",
				Action: s.action(0, 0, s.seedDefaults),
			},
			{
				Name:      "save-all",
				Usage:     "save every changed key from a JSON object file",
				ArgsUsage: "FILE",
				Action:    s.action(1, 1, s.saveAll),
			},
		},
	}

	err := app.RunContext(ctx, append([]string{"sitectl"}, args...))
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, "sitectl:", err)
	var usageErr usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(stderr, "run 'sitectl --help' for usage")
		return 2
	}
	return 1
}

func (s *session) init(c *cli.Context, stderr io.Writer) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	tokenPath := c.String("token-file")
	if tokenPath == "" {
		p, err := tokenfile.DefaultPath()
		if err != nil {
			return err
		}
		tokenPath = p
	}

	client := siteapi.NewClient(c.String("server"), nil)
	defaults := model.DefaultContent()
	s.editor = application.NewEditor(client, tokenfile.New(tokenPath), defaults, logger)
	s.reconciler = application.NewReconciler(client, defaults, logger)
	s.timeout = c.Duration("timeout")
	return nil
}

// action checks the positional argument count and bounds fn by the
// configured timeout.
func (s *session) action(minArgs, maxArgs int, fn func(context.Context, cli.Args) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if n := c.NArg(); n < minArgs || n > maxArgs {
			return usageError(fmt.Sprintf("usage: sitectl %s %s", c.Command.Name, c.Command.ArgsUsage))
		}
		ctx, cancel := context.WithTimeout(c.Context, s.timeout)
		defer cancel()
		return fn(ctx, c.Args())
	}
}

func (s *session) reconcile(ctx context.Context, _ cli.Args) error {
	snap := s.reconciler.Load(ctx)
	if snap.FetchErr != nil {
		fmt.Fprintf(s.stdout, "content unavailable, showing defaults: %v\n", snap.FetchErr)
		return nil
	}

	fmt.Fprintf(s.stdout, "%d keys persisted, %d missing\n", len(snap.Persisted), len(snap.Missing))
	res := <-s.reconciler.Backfill(ctx, snap)
	switch {
	case res.Err != nil:
		fmt.Fprintf(s.stdout, "backfill failed: %v\n", res.Err)
	case len(res.Keys) > 0:
		fmt.Fprintf(s.stdout, "backfilled %d keys\n", len(res.Keys))
	}
	return nil
}

func (s *session) login(ctx context.Context, args cli.Args) error {
	password := os.Getenv("SITECTL_PASSWORD")
	if password == "" {
		line, err := bufio.NewReader(s.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if err := s.editor.Login(ctx, args.First(), password); err != nil {
		return errors.New(s.editor.Status())
	}
	user, _ := s.editor.User()
	fmt.Fprintf(s.stdout, "logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (s *session) whoami(ctx context.Context, _ cli.Args) error {
	if err := s.editor.Resume(ctx); err != nil {
		return err
	}
	user, _ := s.editor.User()
	fmt.Fprintf(s.stdout, "%s <%s> %s\n", user.Name, user.Email, user.Role)
	return nil
}

func (s *session) list(ctx context.Context, args cli.Args) error {
	if err := s.editor.Load(ctx); err != nil {
		return err
	}
	for _, k := range s.editor.Keys(args.First()) {
		fmt.Fprintf(s.stdout, "%s\t%s\n", k, s.editor.Draft(k))
	}
	return nil
}

func (s *session) get(ctx context.Context, args cli.Args) error {
	if err := s.editor.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, s.editor.Draft(args.First()))
	return nil
}

// resume restores the stored login and loads current content.
func (s *session) resume(ctx context.Context) error {
	if err := s.editor.Resume(ctx); err != nil {
		return err
	}
	return s.editor.Load(ctx)
}

func (s *session) set(ctx context.Context, args cli.Args) error {
	key, value := args.Get(0), args.Get(1)
	if err := s.resume(ctx); err != nil {
		return err
	}
	if !s.editor.AddField(key, value) {
		return usageError("KEY must not be blank")
	}
	if err := s.editor.Save(ctx, strings.TrimSpace(key)); err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, s.editor.Status())
	return nil
}

func (s *session) seedDefaults(ctx context.Context, _ cli.Args) error {
	n, err := s.editor.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "%s (%d keys submitted)\n", s.editor.Status(), n)
	return nil
}

func (s *session) saveAll(ctx context.Context, args cli.Args) error {
	path := args.First()
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read drafts: %w", err)
	}
	var drafts map[string]string
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return fmt.Errorf("parse drafts %s: %w", path, err)
	}

	if err := s.resume(ctx); err != nil {
		return err
	}
	for k, v := range drafts {
		s.editor.AddField(k, v)
	}

	saved, err := s.editor.SaveAll(ctx)
	for _, k := range saved {
		fmt.Fprintf(s.stdout, "saved %s\n", k)
	}
	if err != nil {
		var bulkErr *application.BulkSaveError
		if errors.As(err, &bulkErr) {
			return fmt.Errorf("%s (%d saved before the failure remain saved)", s.editor.Status(), len(bulkErr.Saved))
		}
		return err
	}
	fmt.Fprintln(s.stdout, s.editor.Status())
	return nil
}
