package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// quoteInputRe matches the admin quote format "xx: text" (text may span lines).
var quoteInputRe = regexp.MustCompile(`^(?s)(\w{2}):\s*(.+)$`)

// --- Commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	u, err := r.ensureUser(ctx, chatID)
	if err != nil {
		r.log.Error("ensureUser failed", zap.Int64("chat", chatID), zap.Error(err))
		return
	}

	channels, err := r.mandatoryChannels(ctx)
	if err != nil {
		r.log.Error("list channels failed", zap.Error(err))
		r.sendText(chatID, T(textGateCheckFailed, u.Lang))
		return
	}
	if len(channels) > 0 {
		handles := make([]string, 0, len(channels))
		for _, ch := range channels {
			handles = append(handles, ch.Username)
		}
		if !r.gate.Admitted(chatID, handles) {
			r.sendWithKeyboard(chatID, T(textSubscribeFirst, u.Lang), mandatoryChannelsKeyboard(channels))
			return
		}
	}

	r.sendWithKeyboard(chatID, T(textChooseLang, u.Lang), langKeyboard())
}

func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	u, err := r.ensureUser(ctx, chatID)
	if err != nil {
		r.log.Error("ensureUser failed", zap.Int64("chat", chatID), zap.Error(err))
		return
	}
	r.sendWithKeyboard(chatID, T(textSettings, u.Lang), mainSettingsKeyboard(r.isAdmin(chatID)))
}

// --- Settings callbacks ---

func (r *Router) handleLangCallback(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	lang, ok := domain.ParseLanguage(strings.TrimPrefix(cb.Data, cbLangPrefix))
	if !ok {
		_ = r.answerCallback(cb.ID, "")
		return
	}
	if err := r.repo.SetLang(ctx, u.ID, lang); err != nil {
		r.log.Error("set lang failed", zap.Int64("user", u.ID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	_ = r.answerCallback(cb.ID, fmt.Sprintf(T(textLangSet, lang), lang))
	r.editWithKeyboard(u.ID, cb.Message.MessageID, T(textSettings, lang), mainSettingsKeyboard(r.isAdmin(u.ID)))
}

func (r *Router) handleTimeCallback(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	hhmm := strings.TrimPrefix(cb.Data, cbTimePrefix)
	if !domain.ValidSendTime(hhmm) {
		_ = r.answerCallback(cb.ID, "")
		return
	}
	if err := r.repo.SetSendTime(ctx, u.ID, hhmm); err != nil {
		r.log.Error("set send time failed", zap.Int64("user", u.ID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	confirmation := fmt.Sprintf(T(textSendTimeSet, u.Lang), hhmm)
	_ = r.answerCallback(cb.ID, confirmation)
	r.editWithKeyboard(u.ID, cb.Message.MessageID, confirmation, mainSettingsKeyboard(r.isAdmin(u.ID)))
}

func (r *Router) handleTZCallback(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	tz, err := domain.ValidateTZ(strings.TrimPrefix(cb.Data, cbTZPrefix))
	if err != nil {
		_ = r.answerCallback(cb.ID, "")
		return
	}
	if err := r.repo.SetTimezone(ctx, u.ID, tz); err != nil {
		r.log.Error("set timezone failed", zap.Int64("user", u.ID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	confirmation := fmt.Sprintf(T(textTimezoneSet, u.Lang), tz)
	_ = r.answerCallback(cb.ID, confirmation)
	r.editWithKeyboard(u.ID, cb.Message.MessageID, confirmation, mainSettingsKeyboard(r.isAdmin(u.ID)))
}

// --- Admin panel ---

func (r *Router) handleAdminPanel(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	if !r.isAdmin(u.ID) {
		_ = r.answerCallbackAlert(cb.ID, T(textNotAdmin, u.Lang))
		return
	}
	_ = r.answerCallback(cb.ID, "")
	r.editWithKeyboard(u.ID, cb.Message.MessageID, T(textAdminPanel, u.Lang), adminPanelKeyboard())
}

// handleAdminAwait arms a pending admin action and prompts for its input.
// A new action overwrites any prior pending one.
func (r *Router) handleAdminAwait(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery,
	action domain.AdminAction, prompt textKey) {
	if !r.isAdmin(u.ID) {
		_ = r.answerCallbackAlert(cb.ID, T(textNotAdmin, u.Lang))
		return
	}
	if err := r.repo.SetAdminAction(ctx, u.ID, action); err != nil {
		r.log.Error("set admin action failed", zap.Int64("user", u.ID), zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	_ = r.answerCallback(cb.ID, "")
	r.sendText(u.ID, T(prompt, u.Lang))
}

func (r *Router) handleAdminChannels(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	if !r.isAdmin(u.ID) {
		_ = r.answerCallbackAlert(cb.ID, T(textNotAdmin, u.Lang))
		return
	}
	channels, err := r.repo.ListChannels(ctx)
	if err != nil {
		r.log.Error("list channels failed", zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	_ = r.answerCallback(cb.ID, "")
	r.editWithKeyboard(u.ID, cb.Message.MessageID, T(textSubChannels, u.Lang), adminChannelsKeyboard(channels))
}

func (r *Router) handleRemoveChannel(ctx context.Context, u *domain.User, cb *tgbotapi.CallbackQuery) {
	if !r.isAdmin(u.ID) {
		_ = r.answerCallbackAlert(cb.ID, T(textNotAdmin, u.Lang))
		return
	}
	name := strings.TrimPrefix(cb.Data, cbRemovePrefix)
	if err := r.repo.RemoveChannel(ctx, name); err != nil {
		r.log.Error("remove channel failed", zap.String("channel", name), zap.Error(err))
		_ = r.answerCallback(cb.ID, "")
		return
	}
	_ = r.answerCallback(cb.ID, fmt.Sprintf(T(textChannelRemoved, u.Lang), name))

	channels, err := r.repo.ListChannels(ctx)
	if err != nil {
		r.log.Error("list channels failed", zap.Error(err))
		return
	}
	r.editWithKeyboard(u.ID, cb.Message.MessageID, T(textSubChannels, u.Lang), adminChannelsKeyboard(channels))
}

// --- Pending admin inputs ---

// handleQuoteInput parses "xx: text". A malformed payload reprompts and keeps
// the pending state so the admin can retry.
func (r *Router) handleQuoteInput(ctx context.Context, u *domain.User, text string) {
	m := quoteInputRe.FindStringSubmatch(text)
	if m == nil {
		r.sendText(u.ID, T(textWrongFormat, u.Lang))
		return
	}
	lang, ok := domain.ParseLanguage(strings.ToLower(m[1]))
	if !ok {
		r.sendText(u.ID, T(textWrongFormat, u.Lang))
		return
	}
	body := m[2]

	if err := r.repo.AddQuote(ctx, domain.Quote{Lang: lang, Text: body}); err != nil {
		r.log.Error("add quote failed", zap.Error(err))
		r.sendText(u.ID, T(textWrongFormat, u.Lang))
		return
	}
	if err := r.repo.SetAdminAction(ctx, u.ID, domain.ActionNone); err != nil {
		r.log.Error("clear admin action failed", zap.Int64("user", u.ID), zap.Error(err))
	}
	r.sendText(u.ID, fmt.Sprintf(T(textQuoteAdded, u.Lang), lang, body))
}

// handleChannelInput validates an @handle, checks the channel exists via
// getChat, and stores it. Validation failures keep the pending state.
func (r *Router) handleChannelInput(ctx context.Context, u *domain.User, text string) {
	if !strings.HasPrefix(text, "@") {
		r.sendText(u.ID, T(textAddChannel, u.Lang))
		return
	}
	username := strings.ToLower(text)

	exists, err := r.repo.ChannelExists(ctx, username)
	if err != nil {
		r.log.Error("channel lookup failed", zap.Error(err))
		r.sendText(u.ID, T(textChannelNotFound, u.Lang))
		return
	}
	if exists {
		r.sendText(u.ID, T(textChannelExists, u.Lang))
		return
	}

	chat, err := r.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: username},
	})
	if err != nil {
		r.sendText(u.ID, T(textChannelNotFound, u.Lang))
		return
	}
	name := chat.Title
	if name == "" {
		name = username
	}

	if err := r.repo.AddChannel(ctx, domain.Channel{Name: name, Username: username}); err != nil {
		r.log.Error("add channel failed", zap.Error(err))
		r.sendText(u.ID, T(textChannelNotFound, u.Lang))
		return
	}
	if err := r.repo.SetAdminAction(ctx, u.ID, domain.ActionNone); err != nil {
		r.log.Error("clear admin action failed", zap.Int64("user", u.ID), zap.Error(err))
	}
	r.sendText(u.ID, fmt.Sprintf(T(textChannelAdded, u.Lang), username))
}

// handleBroadcastInput resends the admin's message (text, photo or video) to
// every user through the delivery batcher. The pending state resets
// unconditionally.
func (r *Router) handleBroadcastInput(ctx context.Context, u *domain.User, msg *tgbotapi.Message) {
	if err := r.repo.SetAdminAction(ctx, u.ID, domain.ActionNone); err != nil {
		r.log.Error("clear admin action failed", zap.Int64("user", u.ID), zap.Error(err))
	}

	send := r.broadcastSender(msg)
	if send == nil {
		r.sendText(u.ID, T(textBroadcastPrompt, u.Lang))
		return
	}

	users, err := r.repo.ListUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		return
	}
	r.sendText(u.ID, fmt.Sprintf(T(textBroadcastStart, u.Lang), len(users)))

	go r.bcast.Run(ctx, users, func(_ context.Context, target domain.User) error {
		return send(target.ID)
	})
}

// broadcastSender builds a per-recipient send func for the message's content
// type, or nil when the message carries nothing broadcastable.
func (r *Router) broadcastSender(msg *tgbotapi.Message) func(chatID int64) error {
	switch {
	case len(msg.Photo) > 0:
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		caption := msg.Caption
		return func(chatID int64) error {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
			photo.Caption = caption
			_, err := r.bot.Send(photo)
			return err
		}
	case msg.Video != nil:
		fileID := msg.Video.FileID
		caption := msg.Caption
		return func(chatID int64) error {
			video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
			video.Caption = caption
			_, err := r.bot.Send(video)
			return err
		}
	case strings.TrimSpace(msg.Text) != "":
		text := msg.Text
		return func(chatID int64) error {
			_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
			return err
		}
	}
	return nil
}
