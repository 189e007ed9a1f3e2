package domain

// VideoRequest is one accepted bridge request: a short video URL and the
// conversation it should be delivered to. Immutable once created.
type VideoRequest struct {
	SourceURL string
	Recipient Recipient
}

// ResolvedMedia is the result of resolving a short video URL through the
// extraction API.
type ResolvedMedia struct {
	DirectURL string
	Title     string
	Duration  int // seconds, 0 if unknown
}

// MimeTypeMP4 is the MIME type attached to delivered video payloads.
const MimeTypeMP4 = "video/mp4"

// DeliveryPayload is a media message ready for submission to the
// messaging session. Consumed exactly once by the send call.
type DeliveryPayload struct {
	MimeType   string
	Base64Data string
}
