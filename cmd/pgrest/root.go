package pgrest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/edgeflare/pgrest/pkg/config"
	"github.com/edgeflare/pgrest/pkg/httputil"
	mw "github.com/edgeflare/pgrest/pkg/httputil/middleware"
	"github.com/edgeflare/pgrest/pkg/metrics"
	"github.com/edgeflare/pgrest/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	dryRun  bool
	cfg     *config.Config
	logger  *zap.Logger

	// transport overrides the HTTP round tripper, for tests
	transport http.RoundTripper
}

func Main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(transport http.RoundTripper) *cobra.Command {
	a := &app{v: viper.New(), transport: transport}

	rootCmd := &cobra.Command{
		Use:           "pgrest",
		Short:         "pgrest sends requests to a PostgREST API",
		Long:          `pgrest builds PostgREST queries from flags and sends them, or prints them with --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			versionFlag, _ := cmd.Flags().GetBool("version")
			if versionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), config.Version)
				return nil
			}
			return cmd.Help()
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/pgrest.yaml)")
	f.StringP("log-level", "L", "info", "log requests at this level (debug, info, warn, error, none)")
	f.String("url", "", "PostgREST base URL")
	f.String("schema", "", "schema sent as Accept-Profile or Content-Profile")
	f.String("token", "", "bearer token")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.BoolVar(&a.dryRun, "dry-run", false, "print the request instead of sending it")
	rootCmd.Flags().BoolP("version", "v", false, "Print the version number")

	a.v.BindPFlag("logLevel", f.Lookup("log-level"))
	a.v.BindPFlag("client.url", f.Lookup("url"))
	a.v.BindPFlag("client.schema", f.Lookup("schema"))
	a.v.BindPFlag("client.token", f.Lookup("token"))
	a.v.BindPFlag("metrics.addr", f.Lookup("metrics-addr"))

	rootCmd.AddCommand(
		a.readCmd("select", "Read rows of a table or view", false),
		a.readCmd("head", "Read only the headers of a table or view, e.g. with --count", true),
		a.writeCmd("insert", "Insert rows from a JSON or CSV body"),
		a.writeCmd("upsert", "Insert rows, merging those that conflict"),
		a.writeCmd("update", "Patch the rows matched by the filters"),
		a.deleteCmd(),
		a.rpcCmd(),
	)
	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.LogLevel)
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "none" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func (a *app) client() *rest.Client {
	opts := []rest.ClientOption{rest.WithSchema(a.cfg.Client.Schema)}
	if a.cfg.Client.Token != "" {
		opts = append(opts, rest.WithToken(a.cfg.Client.Token))
	}
	for k, v := range a.cfg.Client.Headers {
		opts = append(opts, rest.WithHeader(k, v))
	}
	return rest.NewClient(a.cfg.Client.URL, opts...)
}

func (a *app) doer() *httputil.Client {
	t := a.cfg.Transport
	rt := mw.Chain(a.transport,
		mw.RequestID,
		mw.LoggerWithOptions(&mw.LoggerOptions{Logger: a.logger}),
		mw.Metrics,
	)
	return httputil.NewClient(httputil.RequestConfig{
		Logger:         a.logger,
		Timeout:        t.Timeout,
		RetryEnabled:   t.RetryEnabled,
		MaxRetries:     t.MaxRetries,
		InitialBackoff: t.InitialBackoff,
		MaxBackoff:     t.MaxBackoff,
	}, httputil.WithTransport(rt))
}

// run prints or sends the request held by b and writes the response body to
// out. A non-2xx status is returned as an error after the body is written.
func (a *app) run(cmd *cobra.Command, b *rest.Builder) error {
	out := cmd.OutOrStdout()
	if a.dryRun {
		req, err := b.Build()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, req)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	if a.cfg.Metrics.Addr != "" {
		metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{
			Addr:   a.cfg.Metrics.Addr,
			Path:   a.cfg.Metrics.Path,
			Logger: a.logger,
		})
	}

	resp, err := b.Execute(ctx, a.doer())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server responded with %s", resp.Status)
	}
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Content-Range:", cr)
	}
	return nil
}
