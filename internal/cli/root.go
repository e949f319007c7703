package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	scrapybara "github.com/m43i/go-scrapybara"
	"github.com/m43i/go-scrapybara/internal/config"
	"github.com/m43i/go-scrapybara/internal/logging"
	"github.com/m43i/go-scrapybara/internal/version"
)

// Options holds global CLI options.
type Options struct {
	ConfigPath string
	Output     string
}

// NewRootCmd constructs the base CLI command tree.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "scrapybara",
		Short:         "Start and drive Scrapybara instances",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: ./scrapybara.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "", "Output format: json or yaml (default: yaml on a terminal, json otherwise)")

	cmd.AddCommand(newVersionCmd(opts))
	cmd.AddCommand(newStartCmd(opts))
	cmd.AddCommand(newGetCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newStopCmd(opts))
	cmd.AddCommand(newBashCmd(opts))
	cmd.AddCommand(newScreenshotCmd(opts))

	return cmd
}

// Execute runs the root command. An interrupt cancels the request in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is what every API command needs: a client and an output format.
type session struct {
	client *scrapybara.Client
	logger *zap.Logger
	format string
}

func openSession(cmd *cobra.Command, opts *Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	format, err := resolveFormat(cmd.OutOrStdout(), opts.Output, cfg.Output)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	environment, err := scrapybara.ParseEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}

	client, err := scrapybara.New(
		scrapybara.WithAPIKey(cfg.APIKey),
		scrapybara.WithEnvironment(environment),
		scrapybara.WithBaseURL(cfg.BaseURL),
		scrapybara.WithTimeout(cfg.Timeout),
		scrapybara.WithMaxRetries(cfg.MaxRetries),
		scrapybara.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &session{client: client, logger: logger, format: format}, nil
}

func (s *session) print(cmd *cobra.Command, v any) error {
	return writeOutput(cmd.OutOrStdout(), s.format, v)
}

func (s *session) close() {
	_ = s.logger.Sync()
}
