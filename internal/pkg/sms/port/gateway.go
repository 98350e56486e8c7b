package port

import (
	"context"
	"errors"
	"time"
)

// Receipt is the provider acknowledgement for an accepted outbound message.
type Receipt struct {
	ProviderID string // provider-assigned message SID
	Status     string // provider status at accept time (e.g. "queued")
}

// Gateway sends a single SMS through the carrier provider.
type Gateway interface {
	Send(ctx context.Context, from, to, body string) (*Receipt, error)
}

// GatewayError is a provider rejection. Fatal errors (bad number, auth
// failure) must not be retried; transient ones may be.
type GatewayError struct {
	Code    int
	Message string
	Fatal   bool
}

func (e *GatewayError) Error() string {
	return e.Message
}

// IsFatal reports whether err is a gateway rejection that retrying cannot fix.
func IsFatal(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Fatal
}

// DeliveryRecord is the audit row written for every send attempt.
type DeliveryRecord struct {
	ProviderID string
	From       string
	To         string
	Status     string
	BodyLength int
	Error      string
	CreatedAt  time.Time
}

// DeliveryRecorder persists delivery records. Recording is best-effort: a
// recorder failure must never fail the send itself.
type DeliveryRecorder interface {
	Record(ctx context.Context, rec DeliveryRecord) error
}
