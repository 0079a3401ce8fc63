package audit

import (
	"time"

	"github.com/mssola/useragent"
)

// Event is emitted from domain logic to capture key actions on claims and
// payments. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	Client    string    `json:"client,omitempty"`
}

// Actions recorded by the claims core.
const (
	ActionClaimCreated      = "claim.created"
	ActionClaimTransitioned = "claim.transitioned"
	ActionClaimLiquidated   = "claim.liquidated"
	ActionDocumentAttached  = "document.attached"
	ActionPaymentRegistered = "payment.registered"
	ActionVigencyBypassed   = "vigency.bypassed"
	ActionPendingGenerated  = "payment.pending_generated"
)

// SummarizeUserAgent condenses a raw User-Agent header into a short
// "browser/os" label for the audit trail. Unparseable agents come back as-is,
// truncated.
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		if len(raw) > 64 {
			return raw[:64]
		}
		return raw
	}
	label := name
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " / " + os
	}
	return label
}
