package telegram

import (
	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// textKey names a UI message. Every key must carry a translation for every
// supported language; texts_test.go enforces completeness.
type textKey string

const (
	textChooseLang      textKey = "choose_lang"
	textSettings        textKey = "settings"
	textNoChannels      textKey = "no_channels"
	textNotAdmin        textKey = "not_admin"
	textAdminPanel      textKey = "admin_panel"
	textSetTime         textKey = "set_time"
	textSetTimezone     textKey = "set_timezone"
	textSendTimeSet     textKey = "send_time_set"
	textTimezoneSet     textKey = "timezone_set"
	textLangSet         textKey = "lang_set"
	textQuotePrompt     textKey = "quote_prompt"
	textQuoteAdded      textKey = "quote_added"
	textWrongFormat     textKey = "wrong_format"
	textSubChannels     textKey = "sub_channels"
	textAddChannel      textKey = "add_channel"
	textChannelAdded    textKey = "channel_added"
	textChannelRemoved  textKey = "channel_removed"
	textChannelExists   textKey = "channel_exists"
	textChannelNotFound textKey = "channel_not_found"
	textSubscribeFirst  textKey = "subscribe_first"
	textGateCheckFailed textKey = "gate_check_failed"
	textBroadcastPrompt textKey = "broadcast_prompt"
	textBroadcastStart  textKey = "broadcast_start"
)

var texts = map[textKey]map[domain.Language]string{
	textChooseLang: {
		domain.LangUz: "Tilni tanlang",
		domain.LangRu: "Выберите язык",
		domain.LangEn: "Choose language",
	},
	textSettings: {
		domain.LangUz: "Sozlamalar:",
		domain.LangRu: "Настройки:",
		domain.LangEn: "Settings:",
	},
	textNoChannels: {
		domain.LangUz: "Hozircha hech qanday kanal yo‘q.",
		domain.LangRu: "Пока что нет ни одного канала.",
		domain.LangEn: "There are no channels yet.",
	},
	textNotAdmin: {
		domain.LangUz: "Siz admin emassiz.",
		domain.LangRu: "Вы не администратор.",
		domain.LangEn: "You are not admin.",
	},
	textAdminPanel: {
		domain.LangUz: "Admin panel:",
		domain.LangRu: "Панель администратора:",
		domain.LangEn: "Admin panel:",
	},
	textSetTime: {
		domain.LangUz: "Yuborish vaqtini tanlang:",
		domain.LangRu: "Выберите время отправки:",
		domain.LangEn: "Choose sending time:",
	},
	textSetTimezone: {
		domain.LangUz: "Vaqt zonasini tanlang:",
		domain.LangRu: "Выберите часовой пояс:",
		domain.LangEn: "Choose timezone:",
	},
	textSendTimeSet: {
		domain.LangUz: "Yuborish vaqti %s ga o‘rnatildi.",
		domain.LangRu: "Время отправки установлено на %s.",
		domain.LangEn: "Sending time set to %s.",
	},
	textTimezoneSet: {
		domain.LangUz: "Vaqt zonasi %s ga o‘zgartirildi.",
		domain.LangRu: "Часовой пояс изменен на %s.",
		domain.LangEn: "Timezone changed to %s.",
	},
	textLangSet: {
		domain.LangUz: "Til o‘zgartirildi: %s",
		domain.LangRu: "Язык изменён: %s",
		domain.LangEn: "Language changed: %s",
	},
	textQuotePrompt: {
		domain.LangUz: "Iqtibos qo‘shish uchun quyidagi formatda yuboring:\nuz: Matn\nru: Текст\nen: Text",
		domain.LangRu: "Отправьте цитату в формате:\nuz: Matn\nru: Текст\nen: Text",
		domain.LangEn: "Send the quote in the format:\nuz: Matn\nru: Текст\nen: Text",
	},
	textQuoteAdded: {
		domain.LangUz: "Iqtibos qo‘shildi [%s]: %s",
		domain.LangRu: "Цитата добавлена [%s]: %s",
		domain.LangEn: "Quote added [%s]: %s",
	},
	textWrongFormat: {
		domain.LangUz: "Format noto‘g‘ri. Misol: uz: Matn",
		domain.LangRu: "Неверный формат. Пример: ru: Текст",
		domain.LangEn: "Wrong format. Example: en: Text",
	},
	textSubChannels: {
		domain.LangUz: "Majburiy obuna kanallar:",
		domain.LangRu: "Обязательные подписки на каналы:",
		domain.LangEn: "Mandatory subscription channels:",
	},
	textAddChannel: {
		domain.LangUz: "Kanal nomi yoki username (masalan: @channelname) yuboring:",
		domain.LangRu: "Отправьте имя или username канала (например, @channelname):",
		domain.LangEn: "Send the channel name or username (e.g. @channelname):",
	},
	textChannelAdded: {
		domain.LangUz: "Kanal qo‘shildi: %s",
		domain.LangRu: "Канал добавлен: %s",
		domain.LangEn: "Channel added: %s",
	},
	textChannelRemoved: {
		domain.LangUz: "Kanal o‘chirildi: %s",
		domain.LangRu: "Канал удалён: %s",
		domain.LangEn: "Channel removed: %s",
	},
	textChannelExists: {
		domain.LangUz: "Kanal allaqachon mavjud.",
		domain.LangRu: "Канал уже добавлен.",
		domain.LangEn: "Channel already exists.",
	},
	textChannelNotFound: {
		domain.LangUz: "Kanal topilmadi yoki botga kirish huquqi yo‘q.",
		domain.LangRu: "Канал не найден или у бота нет доступа.",
		domain.LangEn: "Channel not found or the bot has no access.",
	},
	textSubscribeFirst: {
		domain.LangUz: "Iltimos, botdan foydalanishdan oldin quyidagi kanallarga obuna bo‘ling:",
		domain.LangRu: "Пожалуйста, подпишитесь на следующие каналы, прежде чем пользоваться ботом:",
		domain.LangEn: "Please subscribe to the following channels before using the bot:",
	},
	textGateCheckFailed: {
		domain.LangUz: "Kanal obunasini tekshirishda xatolik yuz berdi, iltimos keyinroq urinib ko‘ring.",
		domain.LangRu: "Не удалось проверить подписку на каналы, попробуйте позже.",
		domain.LangEn: "Could not verify channel subscription, please try again later.",
	},
	textBroadcastPrompt: {
		domain.LangUz: "Barcha foydalanuvchilarga yuboriladigan xabarni (matn, rasm yoki video) yuboring:",
		domain.LangRu: "Отправьте сообщение (текст, фото или видео) для рассылки всем пользователям:",
		domain.LangEn: "Send the message (text, photo or video) to broadcast to all users:",
	},
	textBroadcastStart: {
		domain.LangUz: "Xabar %d foydalanuvchiga yuborilmoqda.",
		domain.LangRu: "Сообщение отправляется %d пользователям.",
		domain.LangEn: "Broadcasting the message to %d users.",
	},
}

// T returns the localized text for key, falling back to Uzbek.
func T(key textKey, lang domain.Language) string {
	byLang, ok := texts[key]
	if !ok {
		return string(key)
	}
	if s, ok := byLang[lang]; ok {
		return s
	}
	return byLang[domain.DefaultLang]
}
