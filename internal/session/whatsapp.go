package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/domain"

	_ "modernc.org/sqlite"
)

// WhatsApp is a Sender backed by a whatsmeow multidevice client. Device
// credentials persist in a SQLite store, so pairing survives restarts.
type WhatsApp struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	displayQR bool
	ready     atomic.Bool
	logger    *slog.Logger
}

// NewWhatsApp opens the session store and constructs the client. The
// connection is not established until Connect.
func NewWhatsApp(ctx context.Context, cfg config.WhatsAppConfig, dbPath string, logger *slog.Logger) (*WhatsApp, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath)
	container, err := sqlstore.New(ctx, "sqlite", dsn, newWALogger(logger, "sqlstore"))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	w := &WhatsApp{
		client:    whatsmeow.NewClient(device, newWALogger(logger, "whatsmeow")),
		container: container,
		displayQR: cfg.DisplayQR,
		logger:    logger,
	}
	w.client.AddEventHandler(w.handleEvent)

	return w, nil
}

// Connect establishes the session. On first run the pairing challenge is
// rendered as a QR code on the terminal; afterwards the stored credentials
// are reused. Readiness is signaled asynchronously via the Connected
// event, not by Connect returning.
func (w *WhatsApp) Connect(ctx context.Context) error {
	if w.client.Store.ID != nil {
		// Already paired, just reconnect.
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return nil
	}

	// GetQRChannel must be called before Connect on an unpaired client.
	qrChan, err := w.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("open QR channel: %w", err)
	}
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	go w.pairingLoop(qrChan)
	return nil
}

func (w *WhatsApp) pairingLoop(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			w.logger.Info("pairing code received, scan with the WhatsApp app")
			if w.displayQR {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			}
		case "success":
			w.logger.Info("pairing successful")
		case "timeout":
			w.logger.Error("pairing timed out, restart to retry")
		default:
			w.logger.Warn("pairing event", "event", evt.Event)
		}
	}
}

func (w *WhatsApp) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Connected:
		w.ready.Store(true)
		w.logger.Info("whatsapp session ready")
	case *events.Disconnected:
		w.ready.Store(false)
		w.logger.Warn("whatsapp session disconnected")
	case *events.LoggedOut:
		w.ready.Store(false)
		w.logger.Error("whatsapp session logged out", "reason", e.Reason)
	}
}

// Ready reports whether the session is paired and connected.
func (w *WhatsApp) Ready() bool {
	return w.ready.Load()
}

// Send uploads the payload and submits a video message to the recipient.
func (w *WhatsApp) Send(ctx context.Context, recipient domain.Recipient, payload domain.DeliveryPayload) error {
	if !w.Ready() {
		return domain.ErrSessionNotReady
	}

	jid, err := ParseRecipient(recipient)
	if err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(payload.Base64Data)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	uploaded, err := w.client.Upload(ctx, data, whatsmeow.MediaVideo)
	if err != nil {
		return fmt.Errorf("upload media: %w", err)
	}

	msg := &waE2E.Message{
		VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			Mimetype:      proto.String(payload.MimeType),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		},
	}

	if _, err := w.client.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	w.logger.Info("video message sent",
		"recipient", jid.String(),
		"size_bytes", len(data),
	)
	return nil
}

// Close disconnects the session and releases the store.
func (w *WhatsApp) Close() error {
	w.client.Disconnect()
	return w.container.Close()
}
