package bot

// User-facing strings. The bot speaks Russian; internal errors never leak
// here, only the short apologies below.

// Reply keyboard labels.
const (
	ButtonNewReading  = "🔮 Новый расклад"
	ButtonMyReadings  = "💰 Мои гадания"
	ButtonBuyReadings = "💳 Купить расклады"
	ButtonDailyCard   = "🌅 Карта дня"
	ButtonBackToMenu  = "◀️ В меню"
)

// Divination type labels (also accepted as free-text answers).
const (
	LabelTarot  = "Таро"
	LabelIChing = "И цзин"
)

// Callback actions.
const (
	ActionChooseType    = "type"
	ActionRandomCards   = "random_cards"
	ActionSelectCards   = "select_cards"
	ActionToggleCard    = "toggle"
	ActionConfirmCards  = "confirm_cards"
	ActionBuyPackage    = "buy"
	ActionCheckPayment  = "check"
	ActionCancelPayment = "cancel_payment"
	ActionEmailYes      = "email_yes"
	ActionEmailNo       = "email_no"
	ActionDailyReveal   = "daily"
	ActionDailySub      = "daily_sub"
	ActionDailyUnsub    = "daily_unsub"
	ActionBackToMenu    = "menu"
)

// Messages.
const (
	msgWelcome = "✨ Привет! Я бот-гадалка.\n\n" +
		"Задай мне любой вопрос — о любви, работе, будущем — и я сделаю для тебя расклад Таро " +
		"или обращусь к Книге Перемен.\n\nПросто напиши свой вопрос сообщением 👇"
	msgChooseType      = "На чём будем гадать?"
	msgAskQuestion     = "Напиши свой вопрос — о чём хочешь узнать?"
	msgChooseDrawMode  = "Как выберем карты?"
	msgSelectCards     = "Выбери 3 карты, доверься интуиции 🃏"
	msgSelectionFull   = "Уже выбрано 3 карты. Сними отметку с одной из карт или подтверди выбор."
	msgNeedThreeCards  = "Нужно выбрать ровно 3 карты."
	msgDrawing         = "🔮 Раскладываю карты, минутку..."
	msgCasting         = "🔮 Бросаю монеты, минутку..."
	msgGeneratorDown   = "Извини, звёзды сейчас молчат 🌫 Попробуй ещё раз чуть позже."
	msgPaywall         = "У тебя закончились расклады 😔\n\nВыбери пакет, чтобы продолжить:"
	msgFollowUpHint    = "Можешь задать уточняющий вопрос по раскладу 💬"
	msgFollowUpsSpent  = "Вопросы по этому раскладу закончились. Начни новый расклад, когда будешь готов(а) 🔮"
	msgBackToMenu      = "Возвращаю в меню. Напиши вопрос, когда захочешь погадать ✨"
	msgUnknownChoice   = "Выбери вариант кнопкой ниже 🙂"
	msgAskEmail        = "Укажи email — на него придёт чек об оплате:"
	msgBadEmail        = "Хм, это не похоже на email. Попробуй ещё раз:"
	msgGatewayDown     = "Не получилось создать платёж 😔 Попробуй ещё раз позже."
	msgPaymentsOff     = "Оплата сейчас недоступна. Загляни позже 🙏"
	msgPaymentPending  = "Платёж ещё не прошёл. Если ты уже оплатил(а), подожди минутку и нажми кнопку ещё раз."
	msgPaymentCanceled = "Платёж отменён. Если передумаешь — я рядом 🙂"
	msgFeedbackUsage   = "Напиши отзыв после команды, например:\n/feedback очень нравится бот!"
	msgFeedbackThanks  = "Спасибо за отзыв! 💌"
	msgDailyCardIntro  = "🌅 Твоя карта дня ждёт! Выбери одну из трёх:"
	msgDailySubOn      = "Буду присылать карту дня каждое утро ☀️"
	msgDailySubOff     = "Больше не буду присылать карту дня. Вернуть её можно в любой момент 🌙"
)
