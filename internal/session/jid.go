package session

import (
	"go.mau.fi/whatsmeow/types"

	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// legacyUserServer is the server suffix used by web-client style handles
// ("1234567890@c.us"). The multidevice protocol addresses the same chats
// via s.whatsapp.net.
const legacyUserServer = "c.us"

// ParseRecipient converts a recipient handle into a JID, normalizing
// legacy @c.us handles and bare phone numbers to the multidevice user
// server. Group handles (@g.us) pass through unchanged.
func ParseRecipient(r domain.Recipient) (types.JID, error) {
	if err := r.Validate(); err != nil {
		return types.EmptyJID, err
	}

	user := r.User()
	server := r.Server()

	switch server {
	case "", legacyUserServer:
		server = types.DefaultUserServer
	}

	return types.NewJID(user, server), nil
}
