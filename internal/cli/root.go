package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"propadmin/internal/api"
	"propadmin/internal/format"
	"propadmin/internal/logging"
	"propadmin/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Backend    string
	Token      string
	LogPath    string
	LogLevel   string
	Timeout    time.Duration
	PrettyJSON bool
	Format     string

	cfg *store.GlobalConfig
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "propadmin",
		Short:        "Property back-office console",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  propadmin

  # Open a view directly (shortcut for: propadmin browse invoices-income)
  propadmin invoices-income

  # Reopen a shared address
  propadmin browse invoices-income --query 'estado=pendiente&sort=fecha&order=desc'

  # Scriptable listing
  propadmin list properties --query 'ciudad=Madrid' --format table
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if len(args) == 0 {
				return runBrowse(cmd, app, "", "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Backend base URL (overrides config and PROPADMIN_BACKEND)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token (overrides config and PROPADMIN_TOKEN)")
	cmd.PersistentFlags().StringVar(&app.LogPath, "log", "", "Write JSON logs to this file")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (e.g. 10s)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROPADMIN_FORMAT", "json"), "Output format (json|yaml|table)")

	cmd.AddCommand(newBrowseCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newViewsCmd(app))
	cmd.AddCommand(newAddressCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// init resolves settings: flags win over PROPADMIN_* variables, which win over config.json.
func (app *App) init(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("config: %w", err))
	}
	app.cfg = cfg
	if app.Backend == "" {
		app.Backend = cfg.Backend
	}
	if app.Token == "" {
		app.Token = cfg.Token
	}
	if app.LogPath == "" {
		app.LogPath = cfg.LogPath
	}
	if app.LogLevel == "" {
		app.LogLevel = cfg.LogLevel
	}
	if app.Timeout <= 0 {
		app.Timeout = cfg.Timeout()
	}

	log, err := logging.New(app.LogPath, app.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = log.With(zap.String("cmd", cmd.CommandPath()))
	return nil
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func (app *App) client() (*api.Client, error) {
	c, err := api.New(api.Config{
		BaseURL: app.Backend,
		Token:   app.Token,
		Timeout: app.Timeout,
		Logger:  app.logger(),
	})
	if errors.Is(err, api.ErrNoBaseURL) {
		return nil, errors.New("no backend configured; pass --backend, set PROPADMIN_BACKEND, or run `propadmin config set backend <url>`")
	}
	return c, err
}

func openBook(ctx context.Context) (*store.AddressBook, error) {
	path, err := store.DefaultAddressBookPath()
	if err != nil {
		return nil, err
	}
	return store.OpenAddressBook(ctx, path)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
