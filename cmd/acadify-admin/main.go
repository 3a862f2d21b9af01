package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/acadify/acadify-web/config"
	"github.com/acadify/acadify-web/internal/bootstrap"
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/observability/statsd"
	"github.com/acadify/acadify-web/internal/validation"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

// clientFactory builds the academic API client stack. The returned func
// releases it.
type clientFactory func(ctx context.Context, sink statsd.Sink) (*bootstrap.Client, func(), error)

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	newClient clientFactory
}

const defaultCommandTimeout = 30 * time.Second

var errNotSignedIn = errors.New("not signed in")

func main() {
	logger := bootstrap.InitLogger(slog.LevelWarn)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	cmdCtx.newClient = configClientFactory(cmdCtx)
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"whoami": {
			name:        "whoami",
			description: "Show the user signed in to the academic API",
			run:         runWhoAmI,
		},
		"login": {
			name:        "login",
			description: "Sign in as <email>; the password is read from stdin",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Sign out and clear the persisted API cookies",
			run:         runLogout,
		},
		"role-home": {
			name:        "role-home",
			description: "Print the dashboard path for <ROLE>",
			run:         runRoleHome,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: acadify-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// configClientFactory connects Redis when configured and builds the client
// against the configured API.
func configClientFactory(cmdCtx *commandContext) clientFactory {
	return func(ctx context.Context, sink statsd.Sink) (*bootstrap.Client, func(), error) {
		cfg := cmdCtx.Config
		if !cfg.UsesRedis() {
			cmdCtx.Logger.Warn("COOKIE_STORE is not redis; the session will not outlive this command")
		}
		if cfg.API.IsMock() {
			return nil, nil, errors.New("API_MODE=mock runs inside the web server; point API_BASE_URL at a running API")
		}

		deps := bootstrap.ClientDeps{
			API:     cfg.API,
			Redis:   cfg.Redis,
			Metrics: sink,
			Logger:  cmdCtx.Logger,
		}
		release := func() {}
		if cfg.UsesRedis() {
			client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisOptions{Config: cfg.Redis, Logger: cmdCtx.Logger})
			if err != nil {
				return nil, nil, fmt.Errorf("connect redis: %w", err)
			}
			deps.RedisClient = client
			release = func() {
				if cerr := client.Close(); cerr != nil {
					cmdCtx.Logger.Warn("redis close failed", "error", cerr)
				}
			}
		}

		c, err := bootstrap.NewClient(ctx, deps)
		if err != nil {
			release()
			return nil, nil, err
		}
		return c, func() { c.Close(); release() }, nil
	}
}

type sessionOptions struct {
	Verbose bool
	Timeout time.Duration
}

func parseSessionFlags(name string, args []string) (sessionOptions, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := sessionOptions{}
	fs.BoolVar(&opts.Verbose, "verbose", false, "print the emitted metrics")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "overall command timeout")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultCommandTimeout
	}
	return opts, fs.Args(), nil
}

// withClient runs fn against a fresh client, printing recorded metrics afterwards
// in verbose mode.
func (cmdCtx *commandContext) withClient(opts sessionOptions, fn func(ctx context.Context, c *bootstrap.Client) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	var rec *statsd.Recorder
	var sink statsd.Sink
	if opts.Verbose {
		rec = &statsd.Recorder{}
		sink = rec
	}

	c, release, err := cmdCtx.newClient(ctx, sink)
	if err != nil {
		return err
	}
	defer release()

	runErr := fn(ctx, c)
	if rec != nil {
		for _, line := range rec.Lines() {
			if err := writef(cmdCtx.Stderr, "metric %s\n", line); err != nil {
				return errors.Join(runErr, err)
			}
		}
	}
	return runErr
}

func runWhoAmI(cmdCtx *commandContext, args []string) error {
	opts, _, err := parseSessionFlags("whoami", args)
	if err != nil {
		return err
	}
	return cmdCtx.withClient(opts, func(ctx context.Context, c *bootstrap.Client) error {
		c.Store.CheckSession(ctx)
		st := c.Store.State()
		if st.Error != "" {
			return fmt.Errorf("check session: %s", st.Error)
		}
		if !st.IsAuthenticated() {
			if err := writef(cmdCtx.Stdout, "Not signed in\n"); err != nil {
				return err
			}
			return errNotSignedIn
		}
		return printUser(cmdCtx.Stdout, *st.User)
	})
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseSessionFlags("login", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: acadify-admin login [flags] <email>")
	}
	email := strings.TrimSpace(rest[0])

	password, err := readPassword(cmdCtx.Stdin)
	if err != nil {
		return err
	}
	if fields := validation.ValidateLogin(email, password); len(fields) > 0 {
		return apperrors.Validation(fields, "email", "password")
	}

	return cmdCtx.withClient(opts, func(ctx context.Context, c *bootstrap.Client) error {
		u, loginErr := c.Store.Login(ctx, email, password)
		if loginErr != nil {
			return fmt.Errorf("login: %s", apperrors.MessageOf(loginErr, "Login failed"))
		}
		if err := writef(cmdCtx.Stdout, "Signed in\n"); err != nil {
			return err
		}
		return printUser(cmdCtx.Stdout, u)
	})
}

func runLogout(cmdCtx *commandContext, args []string) error {
	opts, _, err := parseSessionFlags("logout", args)
	if err != nil {
		return err
	}
	return cmdCtx.withClient(opts, func(ctx context.Context, c *bootstrap.Client) error {
		c.Store.Logout(ctx)
		if err := c.Jar.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted cookies: %w", err)
		}
		return writef(cmdCtx.Stdout, "Signed out\n")
	})
}

func runRoleHome(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: acadify-admin role-home <ROLE>")
	}
	role, known := domainauth.ParseRole(args[0])
	path, ok := domainauth.RoleHome(role).Found()
	if !known || !ok {
		return fmt.Errorf("role %q has no dashboard", args[0])
	}
	return writef(cmdCtx.Stdout, "%s\n", path)
}

// readPassword takes the first line of r, without its line ending.
func readPassword(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("password must be provided on stdin")
	}
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password must be provided on stdin")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func printUser(w io.Writer, u domainauth.UserIdentity) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	home := domainauth.RoleHome(u.Role).OrElse("(none)")
	rows := [][2]string{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Role", u.Role.Label()},
		{"Dashboard", home},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
