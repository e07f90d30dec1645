package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/client/app"
	"github.com/fastygo/taskboard/client/remote"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/tokenstore"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/logger"
)

type options struct {
	configPath  string
	apiURL      string
	sessionFile string
	verbose     bool
}

// runtime is what every subcommand works with once the root has booted.
type runtime struct {
	app     *app.App
	logger  *zap.Logger
	manager *lifecycle.Manager
	timeout time.Duration
}

func newRootCmd(rt *runtime) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard - personal task list in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.boot(opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.apiURL, "api-url", "", "Backend base URL (overrides API_URL)")
	flags.StringVar(&opts.sessionFile, "session-file", "", "Where the session token is kept (overrides SESSION_PATH)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests and transitions to stderr")

	rootCmd.AddCommand(statusCmd(rt))
	rootCmd.AddCommand(signUpCmd(rt))
	rootCmd.AddCommand(signInCmd(rt))
	rootCmd.AddCommand(signOutCmd(rt))
	rootCmd.AddCommand(listCmd(rt))
	rootCmd.AddCommand(addCmd(rt))
	rootCmd.AddCommand(toggleCmd(rt))
	rootCmd.AddCommand(deleteCmd(rt))

	return rootCmd
}

func (rt *runtime) boot(opts *options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return err
	}
	if opts.apiURL != "" {
		cfg.Client.APIURL = opts.apiURL
	}
	if opts.sessionFile != "" {
		cfg.Client.SessionPath = opts.sessionFile
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	rt.logger, err = logger.New(logger.Config{Level: level, Encoding: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	rt.manager = lifecycle.New(5*time.Second, rt.logger)
	rt.timeout = cfg.Client.Timeout
	if rt.timeout <= 0 {
		rt.timeout = 10 * time.Second
	}

	tokens, err := tokenstore.Open(cfg.Client.SessionPath, "")
	if err != nil {
		return err
	}
	rt.manager.RegisterCloser("session store", tokens)

	rt.app, err = app.NewRemote(app.RemoteConfig{
		Remote: remote.Config{
			BaseURL: cfg.Client.APIURL,
			APIKey:  cfg.Client.APIKey,
			Timeout: cfg.Client.Timeout,
		},
		Tokens:      tokens,
		GracePeriod: cfg.Client.SignUpGrace,
	}, rt.logger)
	if err != nil {
		return err
	}
	rt.manager.Register("navigation", func(context.Context) error {
		rt.app.Close()
		return nil
	})
	return nil
}

// shutdown runs after every command, including failed ones.
func (rt *runtime) shutdown() error {
	if rt.manager == nil {
		return nil
	}
	err := rt.manager.Shutdown(context.Background())
	_ = rt.logger.Sync()
	return err
}

// commandContext bounds one command. Sign-up also waits out the acknowledgment delay.
func (rt *runtime) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 4*rt.timeout)
}
