// Command invitectl sends one invitation batch from the terminal using the
// credentials found in the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smallbiznis/inviteportal/internal/cli"
	"github.com/smallbiznis/inviteportal/internal/config"
	"github.com/smallbiznis/inviteportal/internal/credentials"
	"github.com/smallbiznis/inviteportal/internal/invite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		emails  string
		role    string
		resend  bool
		verbose bool
	)
	flag.StringVar(&emails, "emails", "", "comma separated email addresses (skips the prompt)")
	flag.StringVar(&role, "role", "", "role to grant (skips the prompt)")
	flag.BoolVar(&resend, "resend", false, "resend existing invitations (skips the prompt)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	opts := cli.Options{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "emails":
			opts.Emails = &emails
		case "role":
			opts.Role = &role
		case "resend":
			opts.Resend = &resend
		}
	})

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}

	log := newLogger(verbose)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := invite.NewClient(invite.ClientConfig{
		BaseURL:   cfg.Upstream.BaseURL,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout(),
	}, nil)
	resolver := invite.NewResolver(client, log, nil)
	source := credentials.NewEnvSource(cfg.Upstream.Token, cfg.Upstream.AccountID)

	runner := cli.NewRunner(resolver, source, os.Stdin, os.Stdout, os.Stderr, log)
	return runner.Run(ctx, opts)
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
