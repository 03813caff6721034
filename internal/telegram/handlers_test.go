package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/inqilobchi/iqtibosbot/internal/batch"
	"github.com/inqilobchi/iqtibosbot/internal/domain"
	"github.com/inqilobchi/iqtibosbot/internal/gate"
)

// memRepo is an in-memory store.Repo for handler tests.
type memRepo struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	channels []domain.Channel
	quotes   []domain.Quote
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]*domain.User{}}
}

func (m *memRepo) EnsureUser(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	u := &domain.User{
		ID:        id,
		Lang:      domain.DefaultLang,
		SendTime:  domain.DefaultSendTime,
		Timezone:  domain.DefaultTZ,
		CreatedAt: time.Now().UTC(),
	}
	m.users[id] = u
	cp := *u
	return &cp, nil
}

func (m *memRepo) ListUsers(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.User
	for _, u := range m.users {
		res = append(res, *u)
	}
	return res, nil
}

func (m *memRepo) SetLang(_ context.Context, id int64, lang domain.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Lang = lang
	return nil
}

func (m *memRepo) SetSendTime(_ context.Context, id int64, hhmm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].SendTime = hhmm
	return nil
}

func (m *memRepo) SetTimezone(_ context.Context, id int64, tz string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Timezone = tz
	return nil
}

func (m *memRepo) SetAdminAction(_ context.Context, id int64, a domain.AdminAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].AdminAction = a
	return nil
}

func (m *memRepo) MarkSent(_ context.Context, id int64, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].LastSentDate = date
	return nil
}

func (m *memRepo) ListChannels(context.Context) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Channel(nil), m.channels...), nil
}

func (m *memRepo) AddChannel(_ context.Context, ch domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, ch)
	return nil
}

func (m *memRepo) RemoveChannel(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.Channel
	for _, ch := range m.channels {
		if ch.Name != name {
			kept = append(kept, ch)
		}
	}
	m.channels = kept
	return nil
}

func (m *memRepo) ChannelExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		if ch.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) AddQuote(_ context.Context, q domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.ID = int64(len(m.quotes) + 1)
	m.quotes = append(m.quotes, q)
	return nil
}

func (m *memRepo) CountQuotes(_ context.Context, lang domain.Language) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.quotes {
		if q.Lang == lang {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) QuoteAt(_ context.Context, lang domain.Language, offset int) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := 0
	for _, q := range m.quotes {
		if q.Lang != lang {
			continue
		}
		if i == offset {
			cp := q
			return &cp, nil
		}
		i++
	}
	return nil, errors.New("offset out of range")
}

func (m *memRepo) Close() error { return nil }

func (m *memRepo) action(id int64) domain.AdminAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.AdminAction
	}
	return domain.ActionNone
}

// fakeBot points a real BotAPI client at a stub HTTP server so handlers can
// call Send/Request without the network.
func fakeBot(t *testing.T) *tgbotapi.BotAPI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(srv.Close)

	bot := &tgbotapi.BotAPI{
		Token:  "TEST",
		Client: srv.Client(),
		Buffer: 100,
		Self:   tgbotapi.User{UserName: "iqtibosbot"},
	}
	bot.SetAPIEndpoint(srv.URL + "/bot%s/%s")
	return bot
}

func newTestRouter(t *testing.T, repo *memRepo, admins []int64) *Router {
	t.Helper()
	bot := fakeBot(t)
	log := zap.NewNop()
	g := gate.New(NewMemberLookup(bot), log)
	b := batch.New[domain.User](batch.Config{Size: 5, Delay: time.Millisecond}, log)
	return NewRouter(bot, log, repo, g, b, admins, "")
}

func privateMsg(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text: text,
	}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		},
	}}
}

const adminID int64 = 7

func armAction(t *testing.T, repo *memRepo, id int64, a domain.AdminAction) {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.EnsureUser(ctx, id); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := repo.SetAdminAction(ctx, id, a); err != nil {
		t.Fatalf("arm action: %v", err)
	}
}

func TestQuoteInput_UnknownLanguageKeepsState(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitQuote)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "xx: text")})

	if got := repo.action(adminID); got != domain.ActionAwaitQuote {
		t.Fatalf("state must stay awaiting_quote, got %q", got)
	}
	if len(repo.quotes) != 0 {
		t.Fatalf("no quote must be created, got %v", repo.quotes)
	}
}

func TestQuoteInput_NoColonKeepsState(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitQuote)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "just words")})

	if got := repo.action(adminID); got != domain.ActionAwaitQuote {
		t.Fatalf("state must stay awaiting_quote, got %q", got)
	}
	if len(repo.quotes) != 0 {
		t.Fatal("no quote must be created")
	}
}

func TestQuoteInput_ValidAddsAndClears(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitQuote)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "uz: Hello")})

	if len(repo.quotes) != 1 {
		t.Fatalf("want exactly one quote, got %d", len(repo.quotes))
	}
	q := repo.quotes[0]
	if q.Lang != domain.LangUz || q.Text != "Hello" {
		t.Fatalf("want {uz Hello}, got {%s %s}", q.Lang, q.Text)
	}
	if got := repo.action(adminID); got != domain.ActionNone {
		t.Fatalf("state must be cleared, got %q", got)
	}
}

func TestChannelInput_MissingAtKeepsState(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitChannel)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "channelname")})

	if got := repo.action(adminID); got != domain.ActionAwaitChannel {
		t.Fatalf("state must stay awaiting_channel, got %q", got)
	}
	if len(repo.channels) != 0 {
		t.Fatal("no channel must be created")
	}
}

func TestChannelInput_ValidAddsAndClears(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitChannel)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "@MyChannel")})

	if len(repo.channels) != 1 {
		t.Fatalf("want exactly one channel, got %d", len(repo.channels))
	}
	if repo.channels[0].Username != "@mychannel" {
		t.Fatalf("username must be lowercased, got %q", repo.channels[0].Username)
	}
	if got := repo.action(adminID); got != domain.ActionNone {
		t.Fatalf("state must be cleared, got %q", got)
	}
}

func TestBroadcastInput_UnconditionalReset(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitBroadcast)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "hammaga salom")})

	if got := repo.action(adminID); got != domain.ActionNone {
		t.Fatalf("broadcast must reset state unconditionally, got %q", got)
	}
}

func TestAdminCallback_NonAdminRejected(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	const stranger int64 = 99

	r.HandleUpdate(context.Background(), callback(stranger, cbAdminQuote))

	if got := repo.action(stranger); got != domain.ActionNone {
		t.Fatalf("non-admin must not arm a pending action, got %q", got)
	}
}

func TestCallback_NilMessageIgnored(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})

	// Inline-mode callbacks arrive without a Message attached.
	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: adminID},
		Data: cbAdminQuote,
	}}
	r.HandleUpdate(context.Background(), upd)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.users) != 0 {
		t.Fatal("a message-less callback must not touch any user record")
	}
}

func TestAdminCallback_ArmsAction(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})

	r.HandleUpdate(context.Background(), callback(adminID, cbAdminQuote))

	if got := repo.action(adminID); got != domain.ActionAwaitQuote {
		t.Fatalf("want awaiting_quote, got %q", got)
	}
}

func TestAdminCallback_NewActionOverwrites(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	ctx := context.Background()

	r.HandleUpdate(ctx, callback(adminID, cbAdminQuote))
	r.HandleUpdate(ctx, callback(adminID, cbAdminAddChan))

	if got := repo.action(adminID); got != domain.ActionAwaitChannel {
		t.Fatalf("new admin action must overwrite the prior one, got %q", got)
	}
}

func TestPendingIgnoredForNonAdmin(t *testing.T) {
	// A stale pending action on a user no longer in the admin set must not
	// be interpreted.
	repo := newMemRepo()
	r := newTestRouter(t, repo, nil)
	armAction(t, repo, adminID, domain.ActionAwaitQuote)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: privateMsg(adminID, "uz: Hello")})

	if len(repo.quotes) != 0 {
		t.Fatal("non-admin input must not create quotes")
	}
}

func TestGroupMessagesIgnored(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, []int64{adminID})
	armAction(t, repo, adminID, domain.ActionAwaitQuote)

	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: adminID, Type: "supergroup"},
		Text: "uz: Hello",
	}
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	if len(repo.quotes) != 0 {
		t.Fatal("group messages must not feed admin flows")
	}
}

func TestSendTimeCallback_Persists(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, nil)
	const user int64 = 5

	r.HandleUpdate(context.Background(), callback(user, cbTimePrefix+"18:00"))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.users[user].SendTime != "18:00" {
		t.Fatalf("want 18:00, got %q", repo.users[user].SendTime)
	}
}

func TestTimezoneCallback_RejectsBadZone(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, nil)
	const user int64 = 5

	r.HandleUpdate(context.Background(), callback(user, cbTZPrefix+"Not/AZone"))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.users[user].Timezone != domain.DefaultTZ {
		t.Fatalf("bad zone must not be stored, got %q", repo.users[user].Timezone)
	}
}
