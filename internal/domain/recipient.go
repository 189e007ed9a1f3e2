package domain

import "strings"

// Recipient is a destination conversation handle, e.g. "1234567890@c.us"
// or "1234567890@s.whatsapp.net". The part after '@' names the server and
// is optional; a bare identifier addresses an individual chat.
type Recipient string

// String returns the string representation of the Recipient.
func (r Recipient) String() string {
	return string(r)
}

// User returns the identifier part before '@'.
func (r Recipient) User() string {
	user, _, _ := strings.Cut(string(r), "@")
	return user
}

// Server returns the server part after '@', or "" if absent.
func (r Recipient) Server() string {
	_, server, _ := strings.Cut(string(r), "@")
	return server
}

// Validate checks that the recipient has a non-empty identifier.
func (r Recipient) Validate() error {
	if r.User() == "" {
		return ErrInvalidRecipient
	}
	return nil
}
