// Command pawnctl is the shop counter client: sign-in, client search, order
// and pawn history, invoice printing and the interactive search screen.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/and161185/pawnshop/internal/api"
	"github.com/and161185/pawnshop/internal/config"
	"github.com/and161185/pawnshop/internal/limiter"
	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/migrate"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/repository"
	"github.com/and161185/pawnshop/internal/repository/postgres"
	"github.com/and161185/pawnshop/internal/service"
	"github.com/and161185/pawnshop/internal/session"
	"github.com/and161185/pawnshop/internal/telemetry"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Sign-in throttle: five failures within fifteen minutes block the phone for fifteen minutes.
const (
	attemptWindow = 15 * time.Minute
	attemptMax    = 5
	attemptBlock  = 15 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand shares. Connect fills the backend half.
type app struct {
	configPath string
	flags      config.Config

	cfg     config.Config
	log     *zap.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	tracer  *sdktrace.TracerProvider

	db      *postgres.DB
	sess    *session.Session
	api     *api.API
	auth    *service.AuthServiceImpl
	notify  notify.Func
	stderr  io.Writer
	limiter limiter.Limiter
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "pawnctl",
		Short:         "Pawn shop counter client",
		Version:       fmt.Sprintf("%s (%s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			a.close()
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pawnshop/config.yaml)")
	f.StringVar(&a.flags.APIURL, "api-url", "", "backend base URL, e.g. http://localhost:8000/api/v1/")
	f.StringVar(&a.flags.LogLevel, "log-level", "", "debug|info|warn|error")
	f.BoolVar(&a.flags.Trace, "trace", false, "export a span per HTTP call over OTLP (see otlp_endpoint)")
	f.StringVar(&a.flags.TokenStore, "token-store", "", "file|postgres")
	f.StringVar(&a.flags.DSN, "dsn", "", "PostgreSQL DSN for the postgres token store")

	cmd.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newRegisterCommand(a),
		newClientCommand(a),
		newClientsCommand(a),
		newHistoryCommand(a),
		newPrintCommand(a),
		newProductsCommand(a),
		newDashboardCommand(a),
		newTUICommand(a),
		newMigrateCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// load reads the configuration and builds the logger, metrics and tracer.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath, nil)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = a.flags.APIURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.LogLevel
	}
	if flags.Changed("trace") {
		cfg.Trace = a.flags.Trace
	}
	if flags.Changed("token-store") {
		cfg.TokenStore = a.flags.TokenStore
	}
	if flags.Changed("dsn") {
		cfg.DSN = a.flags.DSN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.log, err = newLogger(cfg.LogLevel); err != nil {
		return err
	}
	a.reg = prometheus.NewRegistry()
	if a.metrics, err = metrics.New(a.reg); err != nil {
		return err
	}
	if cfg.Trace {
		if a.tracer, err = telemetry.Init(cmd.Context(), "pawnctl", cfg.OTLPEndpoint); err != nil {
			return err
		}
	}
	a.stderr = cmd.ErrOrStderr()
	a.notify = func(n notify.Notification) {
		fmt.Fprintf(a.stderr, "[%s] %s\n", n.Type, n.Message)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = "console"
	return zc.Build()
}

// connect builds the token store, session and API client.
func (a *app) connect(ctx context.Context) error {
	if a.api != nil {
		return nil
	}
	opts := session.HTTPOptions{Timeout: a.cfg.Timeout}
	if a.tracer != nil {
		opts.Tracer = a.tracer
	}
	hc := session.NewHTTPClient(opts, a.log)
	ep, err := session.NewEndpoint(a.cfg.APIURL, hc, a.log, a.metrics)
	if err != nil {
		return err
	}

	var store session.Store
	switch a.cfg.TokenStore {
	case config.StorePostgres:
		if err := migrate.Up(ctx, a.cfg.DSN); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		if a.db, err = postgres.New(ctx, a.cfg.DSN); err != nil {
			return fmt.Errorf("connect token store: %w", err)
		}
		store = repository.ProfileStore{Repo: postgres.NewTokenRepo(a.db), Profile: profile()}
		a.limiter = limiter.NewPG(a.db.Pool, attemptWindow, attemptMax, attemptBlock)
	default:
		store = session.NewFileStore(config.Dir(), a.log)
		a.limiter = limiter.NewMemory(attemptWindow, attemptMax, attemptBlock)
	}

	a.sess, err = session.New(ctx, store,
		session.WithLogger(a.log),
		session.OnTerminate(func() { a.notify.Errorf(notify.SessionExpired) }),
	)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	backend := api.NewAuth(ep)
	a.api = api.New(session.NewClient(ep, a.sess, backend))
	a.auth = service.NewAuthService(backend, a.sess, a.limiter, a.log)
	return nil
}

// profile keys stored tokens in the shared database by OS user.
func profile() string {
	if v := os.Getenv("PAWNSHOP_PROFILE"); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "default"
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.tracer.Shutdown(ctx); err != nil && a.log != nil {
			a.log.Warn("flush traces", zap.Error(err))
		}
		cancel()
	}
	if a.log == nil {
		return
	}
	if a.reg != nil {
		logMetrics(a.log, a.reg)
	}
	_ = a.log.Sync()
}

// logMetrics dumps the request counters at debug level on exit.
func logMetrics(log *zap.Logger, reg prometheus.Gatherer) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		log.Debug("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("name", mf.GetName()), zap.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			log.Debug("metric", fields...)
		}
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pawnctl %s (%s)\n", version, buildDate)
			return nil
		},
	}
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply token store migrations to the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DSN == "" {
				return fmt.Errorf("migrate: no dsn configured")
			}
			if err := migrate.Up(cmd.Context(), a.cfg.DSN); err != nil {
				return err
			}
			v, err := migrate.Version(cmd.Context(), a.cfg.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg
			fmt.Fprintf(cmd.OutOrStdout(), "api_url: %s\ntimeout: %s\ndebounce: %s\npage_size: %d\ntoken_store: %s\nlog_level: %s\ntrace: %t\notlp_endpoint: %s\nprint_dir: %s\n",
				c.APIURL, c.Timeout, c.Debounce, c.PageSize, c.TokenStore, c.LogLevel, c.Trace, c.OTLPEndpoint, c.PrintDir)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.Path()
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
