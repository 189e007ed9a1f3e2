// Package delivery wraps transcoded files as media payloads and submits
// them over the messaging session.
package delivery

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
	"github.com/darwin242209/LuminaTiktok/internal/session"
)

// Adapter builds base64 media payloads and sends them via a Sender.
type Adapter struct {
	sender session.Sender
	logger *slog.Logger
}

// NewAdapter creates a new delivery adapter.
func NewAdapter(sender session.Sender, logger *slog.Logger) *Adapter {
	return &Adapter{
		sender: sender,
		logger: logger,
	}
}

// Deliver reads the transcoded file, encodes it as a video/mp4 payload and
// submits it to the recipient's conversation. Temporary file removal is
// the pipeline's responsibility, so it runs on failed sends too.
func (a *Adapter) Deliver(ctx context.Context, outputPath string, recipient domain.Recipient) error {
	if !a.sender.Ready() {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, domain.ErrSessionNotReady)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return fmt.Errorf("read transcoded file: %w", err)
	}

	payload := domain.DeliveryPayload{
		MimeType:   domain.MimeTypeMP4,
		Base64Data: base64.StdEncoding.EncodeToString(data),
	}

	a.logger.Info("sending video",
		"recipient", recipient.String(),
		"size_bytes", len(data),
	)

	if err := a.sender.Send(ctx, recipient, payload); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	a.logger.Info("video sent", "recipient", recipient.String())
	return nil
}
