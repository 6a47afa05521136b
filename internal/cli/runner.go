package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/smallbiznis/inviteportal/internal/invite"
	"go.uber.org/zap"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

const (
	promptEmails = "Email addresses (comma separated): "
	promptRole   = "Role [" + invite.DefaultRole + "]: "
	promptResend = "Resend emails? [y/N]: "
)

// Sender is satisfied by *invite.Resolver.
type Sender interface {
	Send(ctx context.Context, rawEmails []string, role string, resend bool, source invite.CredentialSource) invite.Result
}

// Options pre-answers prompts. A nil field is asked for interactively.
type Options struct {
	Emails *string
	Role   *string
	Resend *bool
}

type Runner struct {
	sender Sender
	source invite.CredentialSource
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	log    *zap.Logger
}

func NewRunner(sender Sender, source invite.CredentialSource, in io.Reader, out, errOut io.Writer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		sender: sender,
		source: source,
		in:     in,
		out:    out,
		errOut: errOut,
		log:    log.Named("cli"),
	}
}

// Run collects input, sends one invite batch and returns the process exit code.
func (r *Runner) Run(ctx context.Context, opts Options) int {
	fmt.Fprintln(r.out, "=== Invite Portal (CLI) ===")
	fmt.Fprintln(r.out)

	prompter := NewPrompter(r.in, r.out)

	emails, err := r.emails(prompter, opts)
	if err != nil {
		return r.inputError(err)
	}
	role, err := r.role(prompter, opts)
	if err != nil {
		return r.inputError(err)
	}
	resend, err := r.resend(prompter, opts)
	if err != nil {
		return r.inputError(err)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Sending invites...")

	result := r.sender.Send(ctx, emails, role, resend, r.source)
	return r.report(result)
}

func (r *Runner) emails(p *Prompter, opts Options) ([]string, error) {
	if opts.Emails != nil {
		return invite.SplitEmails(*opts.Emails), nil
	}
	raw, err := p.Ask(promptEmails)
	if err != nil {
		return nil, err
	}
	return invite.SplitEmails(raw), nil
}

func (r *Runner) role(p *Prompter, opts Options) (string, error) {
	if opts.Role != nil {
		return *opts.Role, nil
	}
	role, err := p.Ask(promptRole)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return role, err
}

func (r *Runner) resend(p *Prompter, opts Options) (bool, error) {
	if opts.Resend != nil {
		return *opts.Resend, nil
	}
	resend, err := p.Confirm(promptResend)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return resend, err
}

func (r *Runner) inputError(err error) int {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Canceled by user.")
		return ExitOK
	}
	fmt.Fprintf(r.errOut, "\nError: %v\n", err)
	return ExitFailure
}

func (r *Runner) report(result invite.Result) int {
	resp := result.Response()

	if resp.StatusCode != nil {
		fmt.Fprintf(r.out, "\nStatus: %d\n", *resp.StatusCode)
	}
	if resp.Data != nil {
		body, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			r.log.Warn("render upstream body", zap.Error(err))
		} else {
			fmt.Fprintln(r.out, string(body))
		}
	}

	if result.Succeeded() {
		fmt.Fprintln(r.out, "\nInvites sent successfully!")
		return ExitOK
	}

	if f, ok := result.(invite.Failure); ok && f.Kind == invite.KindUpstream {
		fmt.Fprintln(r.out, "\nFailed to send invites")
	} else {
		fmt.Fprintf(r.errOut, "\nError: %s\n", resp.Error)
	}
	return ExitFailure
}
