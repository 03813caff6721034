package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// Callback data prefixes and values.
const (
	cbLangPrefix    = "lang_"
	cbTimePrefix    = "settime_"
	cbTZPrefix      = "settz_"
	cbRemovePrefix  = "admin_remove_channel_"
	cbSettingsLang  = "settings_lang"
	cbSettingsTime  = "settings_time"
	cbSettingsTZ    = "settings_timezone"
	cbAdminPanel    = "admin_panel"
	cbAdminQuote    = "admin_add_quote"
	cbAdminChannels = "admin_channels"
	cbAdminAddChan  = "admin_add_channel"
	cbAdminBcast    = "admin_broadcast"
	cbNoop          = "noop"
)

var sendTimePresets = []string{"08:00", "09:00", "10:00", "12:00", "18:00", "20:00"}

var timezonePresets = []string{
	"Asia/Tashkent",
	"Europe/Moscow",
	"Europe/Istanbul",
	"Europe/Berlin",
	"Asia/Dubai",
	"Europe/London",
}

func langKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O‘zbek", cbLangPrefix+string(domain.LangUz)),
			tgbotapi.NewInlineKeyboardButtonData("Русский", cbLangPrefix+string(domain.LangRu)),
			tgbotapi.NewInlineKeyboardButtonData("English", cbLangPrefix+string(domain.LangEn)),
		),
	)
}

func timeKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(sendTimePresets))
	for _, t := range sendTimePresets {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t, cbTimePrefix+t),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timezoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(timezonePresets))
	for _, tz := range timezonePresets {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(tz, cbTZPrefix+tz),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mainSettingsKeyboard(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Til / Language", cbSettingsLang)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Vaqt / Time", cbSettingsTime)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Vaqt zonasi / Timezone", cbSettingsTZ)),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Admin panel", cbAdminPanel),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Iqtibos qo‘shish", cbAdminQuote)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Majburiy obuna kanallar", cbAdminChannels)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Xabar tarqatish", cbAdminBcast)),
	)
}

// adminChannelsKeyboard lists channels with per-channel remove buttons and an
// add button at the bottom.
func adminChannelsKeyboard(channels []domain.Channel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ch := range channels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ch.Name, cbRemovePrefix+ch.Name),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(T(textNoChannels, domain.DefaultLang), cbNoop),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Kanal qo‘shish", cbAdminAddChan),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// mandatoryChannelsKeyboard renders one URL button per channel the user still
// has to join.
func mandatoryChannelsKeyboard(channels []domain.Channel) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels))
	for _, ch := range channels {
		url := "https://t.me/" + strings.TrimPrefix(ch.Username, "@")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(ch.Name, url),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
