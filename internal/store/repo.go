package store

import (
	"context"

	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// Repo defines storage operations for users, channels and quotes.
type Repo interface {
	// EnsureUser returns the user row for id, creating it with defaults on
	// first contact.
	EnsureUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetLang(ctx context.Context, id int64, lang domain.Language) error
	SetSendTime(ctx context.Context, id int64, hhmm string) error
	SetTimezone(ctx context.Context, id int64, tz string) error
	SetAdminAction(ctx context.Context, id int64, a domain.AdminAction) error
	// MarkSent stamps the user's last delivered local date.
	MarkSent(ctx context.Context, id int64, date string) error

	ListChannels(ctx context.Context) ([]domain.Channel, error)
	AddChannel(ctx context.Context, ch domain.Channel) error
	RemoveChannel(ctx context.Context, name string) error
	ChannelExists(ctx context.Context, username string) (bool, error)

	AddQuote(ctx context.Context, q domain.Quote) error
	CountQuotes(ctx context.Context, lang domain.Language) (int, error)
	// QuoteAt returns the quote at the given offset within the language,
	// in stable insertion order.
	QuoteAt(ctx context.Context, lang domain.Language, offset int) (*domain.Quote, error)

	Close() error
}
