// Package gate decides whether a user has satisfied the mandatory channel
// subscriptions and may be served.
package gate

import (
	"go.uber.org/zap"
)

// MemberLookup resolves a user's membership status in a channel.
// The Telegram transport implements this via getChatMember.
type MemberLookup interface {
	MemberStatus(channel string, userID int64) (string, error)
}

// nonMemberStatuses is the deny-list: only these statuses mean the user is
// not subscribed. Any other status reported by the transport (member,
// administrator, creator, restricted) counts as subscribed.
var nonMemberStatuses = map[string]bool{
	"left":   true,
	"kicked": true,
}

// Gate checks mandatory channel subscriptions for a user.
type Gate struct {
	lookup MemberLookup
	log    *zap.Logger
}

func New(lookup MemberLookup, log *zap.Logger) *Gate {
	return &Gate{lookup: lookup, log: log}
}

// Admitted reports whether userID is subscribed to every channel in the list.
// A lookup failure is treated as non-membership. An empty list always admits.
// Checking short-circuits on the first failing channel.
func (g *Gate) Admitted(userID int64, channels []string) bool {
	for _, ch := range channels {
		status, err := g.lookup.MemberStatus(ch, userID)
		if err != nil {
			g.log.Debug("membership lookup failed",
				zap.String("channel", ch),
				zap.Int64("user", userID),
				zap.Error(err),
			)
			return false
		}
		if nonMemberStatuses[status] {
			return false
		}
	}
	return true
}
