package invite

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observer receives one observation per finished Send.
type Observer interface {
	ObserveInvite(ctx context.Context, outcome string, emails int, elapsed time.Duration)
}

// Resolver validates invite input, resolves credentials and forwards the call.
type Resolver struct {
	client   *Client
	log      *zap.Logger
	observer Observer
	tracer   trace.Tracer
}

func NewResolver(client *Client, log *zap.Logger, observer Observer) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		client:   client,
		log:      log.Named("invite"),
		observer: observer,
		tracer:   otel.Tracer("inviteportal/invite"),
	}
}

// Send runs one invitation batch. It never returns an error; every outcome is
// reported as a Result.
func (r *Resolver) Send(ctx context.Context, rawEmails []string, role string, resend bool, source CredentialSource) Result {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "invite.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	result, emails := r.send(ctx, rawEmails, role, resend, source)

	outcome := outcomeOf(result)
	span.SetAttributes(
		attribute.String("invite.outcome", outcome),
		attribute.Int("invite.emails", emails),
	)
	if f, ok := result.(Failure); ok {
		span.SetStatus(codes.Error, string(f.Kind))
		if f.Status != nil {
			span.SetAttributes(attribute.Int("http.status_code", *f.Status))
		}
	}
	if r.observer != nil {
		r.observer.ObserveInvite(ctx, outcome, emails, time.Since(start))
	}
	return result
}

func (r *Resolver) send(ctx context.Context, rawEmails []string, role string, resend bool, source CredentialSource) (Result, int) {
	emails := NormalizeEmails(rawEmails)
	if len(emails) == 0 {
		return validationFailure(msgEmailsRequired), 0
	}

	creds, err := resolveCredentials(ctx, source)
	if err != nil {
		r.log.Warn("credential resolution failed", zap.Error(err))
		return configurationFailure(fmt.Sprintf("credential lookup failed: %v", err)), len(emails)
	}
	if creds.Token == "" {
		return configurationFailure(msgTokenNotConfigured), len(emails)
	}

	req := Request{
		Emails: emails,
		Role:   ResolveRole(role),
		Resend: resend,
	}

	log := r.log.With(
		zap.String("account_id", creds.AccountID),
		zap.Int("emails", len(emails)),
		zap.String("role", req.Role),
		zap.Bool("resend", req.Resend),
	)

	reply, err := r.client.Do(ctx, creds, req)
	if err != nil {
		log.Warn("invite request failed", zap.Error(err))
		return transportFailure(err), len(emails)
	}

	if reply.Truncated {
		log.Warn("upstream response body truncated", zap.Int("limit_bytes", maxResponseBytes))
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("invite.response_truncated", true))
	}

	if reply.Status != http.StatusOK {
		log.Info("invite rejected upstream", zap.Int("status", reply.Status))
		return upstreamFailure(reply.Status, reply.Data), len(emails)
	}

	log.Info("invites sent")
	return Success{Data: reply.Data}, len(emails)
}

// IsConfigured reports whether source resolves to a usable token. It never
// calls the upstream.
func IsConfigured(ctx context.Context, source CredentialSource) bool {
	creds, err := resolveCredentials(ctx, source)
	return err == nil && creds.Token != ""
}

func resolveCredentials(ctx context.Context, source CredentialSource) (Credentials, error) {
	if source == nil {
		return Credentials{AccountID: DefaultAccountID}, nil
	}
	creds, err := source.Resolve(ctx)
	if err != nil {
		return Credentials{}, err
	}
	creds.Token = strings.TrimSpace(creds.Token)
	creds.AccountID = strings.TrimSpace(creds.AccountID)
	if creds.AccountID == "" {
		creds.AccountID = DefaultAccountID
	}
	return creds, nil
}

const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation_error"
	OutcomeConfiguration = "configuration_error"
	OutcomeUpstream      = "upstream_error"
	OutcomeTransport     = "transport_error"
)

func outcomeOf(r Result) string {
	f, ok := r.(Failure)
	if !ok {
		return OutcomeSuccess
	}
	return string(f.Kind)
}
