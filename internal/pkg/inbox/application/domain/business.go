package inbox

import (
	"github.com/google/uuid"
)

// Tier is the business subscription tier, a closed variant handled
// exhaustively at response-generation sites.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierPro, TierEnterprise:
		return true
	}
	return false
}

// Business is the tenant. Every read/write in the engine is scoped by its id.
type Business struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Phone string    `db:"phone"`
	Tier  Tier      `db:"tier"`
}

// MissedCallReply returns the auto-response body sent when a call from
// the customer goes unanswered.
func (b *Business) MissedCallReply() string {
	switch b.Tier {
	case TierBasic:
		return "Hi! Sorry we missed your call. Text us here and we'll get back to you shortly."
	case TierPro:
		return "Hi, thanks for calling " + b.Name + "! We can't pick up right now — reply to this text and a team member will help you."
	case TierEnterprise:
		return "Thank you for calling " + b.Name + ". Our team has been notified and will respond here within minutes. How can we help?"
	default:
		// Unknown tiers behave like basic rather than dropping the reply.
		return "Hi! Sorry we missed your call. Text us here and we'll get back to you shortly."
	}
}
