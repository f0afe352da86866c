// Package cli implements the handyctl command tree.
//
// Every command that corresponds to a screen of the marketplace carries a
// route annotation. Before it runs, the stored session is resumed and the
// route is checked by the access gate, so commands are allowed or refused
// exactly as the screens would be.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Kimutaijeremy/handyproconnect/internal/api"
	"github.com/Kimutaijeremy/handyproconnect/internal/auth"
	"github.com/Kimutaijeremy/handyproconnect/internal/config"
	"github.com/Kimutaijeremy/handyproconnect/internal/dashboard"
	"github.com/Kimutaijeremy/handyproconnect/internal/gate"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

const (
	// annotationRoute holds the app route a command stands for. "{id}" is
	// replaced by the first argument.
	annotationRoute = "route"
	// annotationNoResume skips restoring the stored session.
	annotationNoResume = "no-resume"
)

var (
	errLoginRequired = errors.New("not logged in")
	errRoleRequired  = errors.New("not available for your account type")
)

// noColor disables ANSI colors in table output.
var noColor bool

// app holds the collaborators built for one command invocation.
type app struct {
	cfg    *config.Config
	format string
	out    io.Writer

	logger   *slog.Logger
	registry *prometheus.Registry
	store    *session.Store
	client   *api.Client
	flow     *auth.Flow
	dash     *dashboard.ViewModel
	routes   *gate.Routes
	guard    *gate.Guard
}

// NewRootCommand builds the handyctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "handyctl",
		Short: "HandyPro Connect marketplace client",
		Long: `handyctl connects homeowners with home-service professionals.

Homeowners post jobs and accept quotes; professionals browse open jobs and
submit quotes.

Examples:
  handyctl register --email me@example.com --name "Jane Doe" --role customer
  handyctl login --email me@example.com
  handyctl dashboard
  handyctl jobs create --title "Fix sink" --description "Drips" --location Nairobi
  handyctl jobs open --urgency emergency
  handyctl quotes submit 42 --amount 150`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./config.yaml or the user config dir)")
	flags.String("api-url", "", "API base URL including /api/v1")
	flags.Duration("timeout", 0, "API request timeout")
	flags.String("token-file", "", "where the session token is kept between runs")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.StringP("output", "o", "", "output format (table, json, yaml)")
	flags.String("metrics-textfile", "", "write API client metrics to this file after each command")
	flags.BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newDashboardCmd(a),
		newJobsCmd(a),
		newQuotesCmd(a),
		newServicesCmd(a),
	)
	return root
}

// flagBindings maps config keys to persistent flags.
var flagBindings = map[string]string{
	"api.url":            "api-url",
	"api.timeout":        "timeout",
	"session.token_file": "token-file",
	"log.level":          "log-level",
	"log.format":         "log-format",
	"output.format":      "output",
	"metrics.textfile":   "metrics-textfile",
}

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	flags := cmd.Root().PersistentFlags()
	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	for key, name := range flagBindings {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return config.Decode(v)
}

// setup loads configuration, wires the client stack, resumes the stored
// session and checks the command's route.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.format = strings.ToLower(cfg.Output.Format)
	a.out = cmd.OutOrStdout()
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	slog.SetDefault(a.logger)

	var tokens session.TokenStore
	if cfg.Session.TokenFile != "" {
		fileStore, err := session.NewFileTokenStore(cfg.Session.TokenFile)
		if err != nil {
			return err
		}
		tokens = fileStore
	}

	a.registry = prometheus.NewRegistry()
	a.store = session.NewStore(tokens, session.WithLogger(a.logger))
	a.client = api.NewClient(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithSession(a.store),
		api.WithLogger(a.logger),
		api.WithMetrics(a.registry),
	)
	a.flow = auth.NewFlow(a.client, a.store, auth.WithLogger(a.logger))
	a.dash = dashboard.NewViewModel(a.client, a.store, dashboard.WithLogger(a.logger))
	a.routes = gate.DefaultRoutes()
	a.guard = gate.NewGuard(a.store, a.routes,
		gate.WithLogger(a.logger),
		gate.OnRedirect(func(from, to string) {
			a.logger.Debug("navigation redirected", slog.String("from", from), slog.String("to", to))
		}),
	)

	if cmd.Annotations[annotationNoResume] == "" {
		if err := a.flow.Resume(cmd.Context()); err != nil {
			a.logger.Warn("could not resume session", slog.String("error", err.Error()))
		}
	}

	return a.enter(cmd, args)
}

// enter navigates to the command's route and refuses the command when the
// gate redirects.
func (a *app) enter(cmd *cobra.Command, args []string) error {
	pattern := cmd.Annotations[annotationRoute]
	if pattern == "" {
		return nil
	}
	path := pattern
	if len(args) > 0 {
		path = strings.ReplaceAll(path, "{id}", args[0])
	}

	want, ok := a.routes.Resolve(path)
	if !ok {
		return fmt.Errorf("unknown route %q", path)
	}
	shown := a.guard.Navigate(path)
	if shown.Path == want.Path {
		return nil
	}

	switch shown.Path {
	case gate.LoginPath:
		return fmt.Errorf("%s: %w", cmd.CommandPath(), errLoginRequired)
	default:
		if role := want.Requirement.Role(); role != "" {
			return fmt.Errorf("%s: %w (requires %s)", cmd.CommandPath(), errRoleRequired, role.Label())
		}
		return fmt.Errorf("%s: redirected to %s", cmd.CommandPath(), shown.Path)
	}
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.guard != nil {
		a.guard.Close()
	}
	return a.writeMetrics()
}

func (a *app) writeMetrics() error {
	if a.cfg == nil || a.cfg.Metrics.Textfile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// Execute runs the command tree and reports failures on stderr. It returns
// the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(cmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}
