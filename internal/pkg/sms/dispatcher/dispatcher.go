package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"textback/internal/pkg/sms/port"
	"textback/internal/pkg/sms/ratelimit"
	apperrors "textback/pkg/errors"
)

// Send outcome statuses.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"

	ReasonRateLimited = "rate_limited"
)

// SendOptions tunes a single send.
type SendOptions struct {
	// BypassRateLimit skips the cooldown check. The send still refreshes
	// the window for subsequent automated sends.
	BypassRateLimit bool
}

// SendResult reports what happened to a send request. A skipped send is not
// an error.
type SendResult struct {
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
}

// Dispatcher sends SMS through the gateway with per-recipient cooldown
// enforcement and best-effort delivery accounting.
type Dispatcher struct {
	gateway  port.Gateway
	limiter  ratelimit.Limiter
	recorder port.DeliveryRecorder
	log      *slog.Logger
}

func New(gateway port.Gateway, limiter ratelimit.Limiter, recorder port.DeliveryRecorder, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{gateway: gateway, limiter: limiter, recorder: recorder, log: logger}
}

// Send delivers body from the business number to the customer. The cooldown
// window is reserved before the gateway call so concurrent sends to the same
// number cannot both pass the check; a failed gateway call releases the
// reservation. Gateway rejections come back as typed errors so the caller can
// distinguish fatal from transient.
func (d *Dispatcher) Send(ctx context.Context, from, to, body string, opts SendOptions) (*SendResult, error) {
	if to == "" {
		return nil, apperrors.InvalidArg("recipient number is required")
	}
	if body == "" {
		return nil, apperrors.InvalidArg("message body is required")
	}

	if !opts.BypassRateLimit {
		ok, err := d.limiter.Reserve(ctx, to)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnavailable, "rate limiter unavailable", err)
		}
		if !ok {
			d.log.Info("send skipped", slog.String("to", to), slog.String("reason", ReasonRateLimited))
			return &SendResult{Status: StatusSkipped, Reason: ReasonRateLimited}, nil
		}
	}

	receipt, err := d.gateway.Send(ctx, from, to, body)
	if err != nil {
		if !opts.BypassRateLimit {
			if relErr := d.limiter.Release(ctx, to); relErr != nil {
				d.log.Warn("cooldown release failed", slog.String("to", to), slog.Any("error", relErr))
			}
		}
		d.record(ctx, port.DeliveryRecord{
			From:       from,
			To:         to,
			Status:     "failed",
			BodyLength: len(body),
			Error:      err.Error(),
			CreatedAt:  time.Now().UTC(),
		})
		if port.IsFatal(err) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "sms rejected by provider", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "sms provider unavailable", err)
	}

	if opts.BypassRateLimit {
		if err := d.limiter.Touch(ctx, to); err != nil {
			d.log.Warn("cooldown touch failed", slog.String("to", to), slog.Any("error", err))
		}
	}

	d.record(ctx, port.DeliveryRecord{
		ProviderID: receipt.ProviderID,
		From:       from,
		To:         to,
		Status:     receipt.Status,
		BodyLength: len(body),
		CreatedAt:  time.Now().UTC(),
	})
	d.log.Info("sms sent", slog.String("to", to), slog.String("sid", receipt.ProviderID))
	return &SendResult{Status: StatusSent, ProviderID: receipt.ProviderID}, nil
}

// TimeRemaining reports the cooldown left for a recipient.
func (d *Dispatcher) TimeRemaining(ctx context.Context, to string) (time.Duration, error) {
	return d.limiter.Remaining(ctx, to)
}

// Clear removes the recipient's cooldown entry.
func (d *Dispatcher) Clear(ctx context.Context, to string) error {
	return d.limiter.Clear(ctx, to)
}

func (d *Dispatcher) record(ctx context.Context, rec port.DeliveryRecord) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(ctx, rec); err != nil {
		d.log.Warn("delivery record failed", slog.String("to", rec.To), slog.Any("error", err))
	}
}
