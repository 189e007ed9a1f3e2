// Package session owns the long-lived messaging connection: pairing,
// readiness signaling, and message submission. The pipeline only sees the
// Sender interface so tests can substitute a stub.
package session

import (
	"context"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// Sender submits media payloads over an established messaging session.
type Sender interface {
	// Ready reports whether the session has been paired and connected at
	// least once. Sends before readiness are rejected by Send.
	Ready() bool

	// Send delivers the payload to the recipient's conversation. The
	// payload is consumed exactly once; failures are not retried here.
	Send(ctx context.Context, recipient domain.Recipient, payload domain.DeliveryPayload) error
}
