package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/inqilobchi/iqtibosbot/internal/batch"
	"github.com/inqilobchi/iqtibosbot/internal/domain"
	"github.com/inqilobchi/iqtibosbot/internal/gate"
	"github.com/inqilobchi/iqtibosbot/internal/store"
)

// Router wires Telegram updates to handlers. Pending admin flows live on the
// user row, not in memory, so they survive restarts.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	repo   store.Repo
	gate   *gate.Gate
	bcast  *batch.Batcher[domain.User]
	admins map[int64]struct{}

	// channelOverride, when non-empty, replaces the stored channel list.
	channelOverride string
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, g *gate.Gate,
	bcast *batch.Batcher[domain.User], admins []int64, channelOverride string) *Router {
	set := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}
	return &Router{
		bot:             bot,
		log:             log,
		repo:            repo,
		gate:            g,
		bcast:           bcast,
		admins:          set,
		channelOverride: channelOverride,
	}
}

func (r *Router) isAdmin(id int64) bool {
	_, ok := r.admins[id]
	return ok
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		// Group and channel posts are not part of any flow.
		if !msg.Chat.IsPrivate() {
			return
		}
		text := strings.TrimSpace(msg.Text)
		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, msg.Chat.ID)
		case strings.HasPrefix(text, "/settings"):
			r.handleSettings(ctx, msg.Chat.ID)
		default:
			r.handlePrivateMessage(ctx, msg)
		}
		return
	}

	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Inline-mode callbacks carry no Message; none of this bot's keyboards
	// are inline, so just acknowledge and drop.
	if cb.Message == nil {
		_ = r.answerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	u, err := r.ensureUser(ctx, chatID)
	if err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}

	switch {
	case strings.HasPrefix(data, cbLangPrefix):
		r.handleLangCallback(ctx, u, cb)
	case data == cbSettingsLang:
		r.editWithKeyboard(chatID, cb.Message.MessageID, T(textChooseLang, u.Lang), langKeyboard())
	case data == cbSettingsTime:
		r.editWithKeyboard(chatID, cb.Message.MessageID, T(textSetTime, u.Lang), timeKeyboard())
	case data == cbSettingsTZ:
		r.editWithKeyboard(chatID, cb.Message.MessageID, T(textSetTimezone, u.Lang), timezoneKeyboard())
	case strings.HasPrefix(data, cbTimePrefix):
		r.handleTimeCallback(ctx, u, cb)
	case strings.HasPrefix(data, cbTZPrefix):
		r.handleTZCallback(ctx, u, cb)
	case data == cbAdminPanel:
		r.handleAdminPanel(ctx, u, cb)
	case data == cbAdminQuote:
		r.handleAdminAwait(ctx, u, cb, domain.ActionAwaitQuote, textQuotePrompt)
	case data == cbAdminChannels:
		r.handleAdminChannels(ctx, u, cb)
	case data == cbAdminAddChan:
		r.handleAdminAwait(ctx, u, cb, domain.ActionAwaitChannel, textAddChannel)
	case data == cbAdminBcast:
		r.handleAdminAwait(ctx, u, cb, domain.ActionAwaitBroadcast, textBroadcastPrompt)
	case strings.HasPrefix(data, cbRemovePrefix):
		r.handleRemoveChannel(ctx, u, cb)
	default:
		_ = r.answerCallback(cb.ID, "")
	}
}

// handlePrivateMessage interprets free-form private messages. Only a pending
// admin action gives them meaning; everything else is ignored.
func (r *Router) handlePrivateMessage(ctx context.Context, msg *tgbotapi.Message) {
	u, err := r.ensureUser(ctx, msg.Chat.ID)
	if err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		return
	}
	if u.AdminAction == domain.ActionNone || !r.isAdmin(u.ID) {
		return
	}

	switch u.AdminAction {
	case domain.ActionAwaitQuote:
		r.handleQuoteInput(ctx, u, strings.TrimSpace(msg.Text))
	case domain.ActionAwaitChannel:
		r.handleChannelInput(ctx, u, strings.TrimSpace(msg.Text))
	case domain.ActionAwaitBroadcast:
		r.handleBroadcastInput(ctx, u, msg)
	}
}

// --- Transport adapter helpers ---

// BotUsername returns the bot's own username for the image footer.
// This makes Router satisfy scheduler.Sender together with SendQuotePhoto.
func (r *Router) BotUsername() string {
	return r.bot.Self.UserName
}

// SendQuotePhoto delivers a rendered quote image with its text as caption.
func (r *Router) SendQuotePhoto(userID int64, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(userID, tgbotapi.FileBytes{Name: "quote.png", Bytes: png})
	photo.Caption = caption
	_, err := r.bot.Send(photo)
	return err
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) editWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	if _, err := r.bot.Send(edit); err != nil {
		r.log.Warn("edit failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

func (r *Router) answerCallbackAlert(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallbackWithAlert(id, text))
	return err
}

func (r *Router) ensureUser(ctx context.Context, chatID int64) (*domain.User, error) {
	return r.repo.EnsureUser(ctx, chatID)
}

// mandatoryChannels returns the channels the gate must check: the single
// override when configured, the stored list otherwise.
func (r *Router) mandatoryChannels(ctx context.Context) ([]domain.Channel, error) {
	if r.channelOverride != "" {
		return []domain.Channel{{Name: r.channelOverride, Username: r.channelOverride}}, nil
	}
	return r.repo.ListChannels(ctx)
}

// MemberLookup adapts the bot API to gate.MemberLookup.
type MemberLookup struct {
	bot *tgbotapi.BotAPI
}

func NewMemberLookup(bot *tgbotapi.BotAPI) *MemberLookup {
	return &MemberLookup{bot: bot}
}

// MemberStatus resolves the user's membership status in a channel by handle.
func (m *MemberLookup) MemberStatus(channel string, userID int64) (string, error) {
	member, err := m.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}
