package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/conf"
	"divination-bot/internal/constants"
	"divination-bot/internal/deck"
	bizErrors "divination-bot/internal/errors"

	kratosErrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewBotAPI connects to the chat platform. A missing token is fatal.
func NewBotAPI(c *conf.Bootstrap, logger log.Logger) (*tgbotapi.BotAPI, error) {
	if c.Bot == nil || c.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(c.Bot.Token)
	if err != nil {
		return nil, err
	}
	log.NewHelper(logger).Infof("authorized as @%s", api.Self.UserName)
	return api, nil
}

// Handler turns parsed events into state machine calls and outbound messages.
// Updates are handled sequentially by the poller, so per-user conversation
// state needs no lock here; the balance path is hardened in the data layer.
type Handler struct {
	api         *tgbotapi.BotAPI
	users       *biz.UserUseCase
	balance     *biz.BalanceUseCase
	dialog      *biz.DialogUseCase
	payment     *biz.PaymentUseCase
	conv        *biz.ConversionUseCase
	webAppURL   string
	adminChatID int64
	log         *log.Helper
}

// NewHandler creates the update handler and wires itself as the payment
// success notifier.
func NewHandler(
	c *conf.Bootstrap,
	api *tgbotapi.BotAPI,
	users *biz.UserUseCase,
	balance *biz.BalanceUseCase,
	dialog *biz.DialogUseCase,
	payment *biz.PaymentUseCase,
	conv *biz.ConversionUseCase,
	logger log.Logger,
) *Handler {
	h := &Handler{
		api:     api,
		users:   users,
		balance: balance,
		dialog:  dialog,
		payment: payment,
		conv:    conv,
		log:     log.NewHelper(logger),
	}
	if c.Bot != nil {
		h.webAppURL = c.Bot.WebAppURL
		h.adminChatID = c.Bot.AdminChatID
	}
	payment.SetNotifier(h)
	return h
}

// HandleUpdate processes one inbound update end to end. Errors are logged and
// answered with a short apology; they never escape to the poller.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := ParseUpdate(update)
	if !ok {
		return
	}

	u := &biz.User{
		UserID:       ev.UserID,
		Username:     ev.From.Username,
		FirstName:    ev.From.FirstName,
		LastName:     ev.From.LastName,
		LanguageCode: ev.From.LanguageCode,
	}
	// Attribution is first-touch only, so the deep-link payload has to ride
	// along with the very first upsert.
	if ev.Kind == EventCommand && ev.Command == "start" {
		u.UTMSource = ev.Args
	}
	if _, err := h.users.Touch(ctx, u); err != nil {
		h.log.Errorf("touch user %d: %v", ev.UserID, err)
	}

	switch ev.Kind {
	case EventCommand:
		h.handleCommand(ctx, ev)
	case EventCallback:
		h.handleCallback(ctx, ev)
	case EventText:
		h.handleText(ctx, ev)
	}
}

// ========== commands ==========

func (h *Handler) handleCommand(ctx context.Context, ev *Event) {
	switch ev.Command {
	case "start":
		h.handleStart(ctx, ev)
	case "help":
		h.reply(ev.ChatID, msgWelcome, MainMenuKeyboard())
	case "balance":
		h.showBalance(ctx, ev)
	case "cancel", "menu":
		h.backToMenu(ctx, ev)
	case "feedback":
		h.handleFeedback(ctx, ev)
	default:
		h.reply(ev.ChatID, msgUnknownChoice, nil)
	}
}

func (h *Handler) handleStart(ctx context.Context, ev *Event) {
	if err := h.dialog.Cancel(ctx, ev.UserID); err != nil {
		h.log.Errorf("reset session for user %d: %v", ev.UserID, err)
	}
	h.reply(ev.ChatID, msgWelcome, MainMenuKeyboard())
}

func (h *Handler) handleFeedback(ctx context.Context, ev *Event) {
	if strings.TrimSpace(ev.Args) == "" {
		h.reply(ev.ChatID, msgFeedbackUsage, nil)
		return
	}
	if h.adminChatID != 0 {
		text := fmt.Sprintf("💌 Отзыв от %d (@%s):\n%s", ev.UserID, ev.From.Username, ev.Args)
		h.send(tgbotapi.NewMessage(h.adminChatID, text))
	}
	h.reply(ev.ChatID, msgFeedbackThanks, nil)
}

// ========== plain text ==========

func (h *Handler) handleText(ctx context.Context, ev *Event) {
	switch ev.Text {
	case ButtonNewReading:
		if err := h.dialog.StartTypeChoice(ctx, ev.UserID); err != nil {
			h.apologize(ev.ChatID, err)
			return
		}
		h.reply(ev.ChatID, msgChooseType, TypeKeyboard())
		return
	case ButtonMyReadings:
		h.showBalance(ctx, ev)
		return
	case ButtonBuyReadings:
		h.reply(ev.ChatID, msgPaywall, PackagesKeyboard())
		return
	case ButtonDailyCard:
		msg := tgbotapi.NewMessage(ev.ChatID, msgDailyCardIntro)
		msg.ReplyMarkup = DailyCardKeyboard(deck.DrawCards(constants.TarotSpreadSize))
		h.send(msg)
		return
	case ButtonBackToMenu:
		h.backToMenu(ctx, ev)
		return
	}

	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil {
		// Free text from idle becomes the pending question.
		if err := h.dialog.StartQuestion(ctx, ev.UserID, ev.Text); err != nil {
			h.apologize(ev.ChatID, err)
			return
		}
		h.reply(ev.ChatID, msgChooseType, TypeKeyboard())
		return
	}

	switch s.State {
	case biz.StateChoosingType:
		if dtype, ok := typeFromLabel(ev.Text); ok {
			h.chooseType(ctx, ev, dtype)
			return
		}
		h.reply(ev.ChatID, msgUnknownChoice, TypeKeyboard())

	case biz.StateAwaitingQuestion:
		if dtype, ok := typeFromLabel(ev.Text); ok {
			h.chooseType(ctx, ev, dtype)
			return
		}
		if _, err := h.dialog.SetQuestion(ctx, ev.UserID, ev.Text); err != nil {
			h.apologize(ev.ChatID, err)
			return
		}
		h.proceedToDraw(ctx, ev, s.DivinationType)

	case biz.StateSelectingCards:
		h.reply(ev.ChatID, msgSelectCards, nil)

	case biz.StateChatting:
		h.handleFollowUp(ctx, ev)

	case biz.StateWaitingEmail:
		h.handleEmailInput(ctx, ev, s)

	case biz.StateConfirmingEmail:
		h.reply(ev.ChatID, msgUnknownChoice, EmailConfirmKeyboard(s.Email))

	case biz.StateWaitingPayment:
		h.reply(ev.ChatID, msgPaymentPending, nil)

	default:
		h.reply(ev.ChatID, msgUnknownChoice, nil)
	}
}

func typeFromLabel(text string) (string, bool) {
	switch strings.TrimSpace(strings.TrimLeft(text, "🃏☯️ ")) {
	case LabelTarot, strings.ToLower(LabelTarot):
		return constants.DivinationTypeTarot, true
	case LabelIChing, strings.ToLower(LabelIChing):
		return constants.DivinationTypeIChing, true
	}
	return "", false
}

// ========== callbacks ==========

func (h *Handler) handleCallback(ctx context.Context, ev *Event) {
	// Always ack the press so the client stops its spinner.
	if _, err := h.api.Request(tgbotapi.NewCallback(ev.Callback.ID, "")); err != nil {
		h.log.Warnf("answer callback for user %d: %v", ev.UserID, err)
	}

	switch ev.Callback.Action {
	case ActionChooseType:
		h.chooseType(ctx, ev, ev.Callback.Arg)
	case ActionRandomCards:
		h.performReading(ctx, ev, constants.DivinationTypeTarot, nil)
	case ActionSelectCards:
		s, err := h.dialog.BeginCardSelection(ctx, ev.UserID)
		if err != nil {
			h.apologize(ev.ChatID, err)
			return
		}
		h.reply(ev.ChatID, msgSelectCards, CardSelectionKeyboard(s.SelectedCards))
	case ActionToggleCard:
		h.handleToggle(ctx, ev)
	case ActionConfirmCards:
		h.handleConfirmCards(ctx, ev)
	case ActionBuyPackage:
		h.handleBuy(ctx, ev)
	case ActionEmailYes:
		h.handleEmailYes(ctx, ev)
	case ActionEmailNo:
		h.askEmail(ctx, ev)
	case ActionCheckPayment:
		h.handleCheckPayment(ctx, ev)
	case ActionCancelPayment:
		h.backToMenu(ctx, ev)
	case ActionDailyReveal:
		h.handleDailyReveal(ev)
	case ActionDailySub:
		h.setDailySubscription(ctx, ev, true)
	case ActionDailyUnsub:
		h.setDailySubscription(ctx, ev, false)
	case ActionBackToMenu:
		h.backToMenu(ctx, ev)
	}
}

func (h *Handler) chooseType(ctx context.Context, ev *Event, dtype string) {
	outcome, _, err := h.dialog.ChooseType(ctx, ev.UserID, dtype)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if outcome == biz.OutcomeAskQuestion {
		h.reply(ev.ChatID, msgAskQuestion, nil)
		return
	}
	h.proceedToDraw(ctx, ev, dtype)
}

// proceedToDraw runs the draw directly for I-Ching, or asks how to pick the
// cards for tarot (stashing the question for the browser surface first).
func (h *Handler) proceedToDraw(ctx context.Context, ev *Event, dtype string) {
	if dtype == constants.DivinationTypeIChing {
		h.performReading(ctx, ev, dtype, nil)
		return
	}
	if h.webAppURL != "" {
		if s, err := h.dialog.Current(ctx, ev.UserID); err == nil && s != nil && s.Question != "" {
			if err := h.dialog.StashQuestion(ctx, ev.UserID, s.Question); err != nil {
				h.log.Errorf("stash question for user %d: %v", ev.UserID, err)
			}
		}
	}
	h.reply(ev.ChatID, msgChooseDrawMode, DrawModeKeyboard(h.webAppURL, ev.UserID))
}

func (h *Handler) handleToggle(ctx context.Context, ev *Event) {
	s, added, err := h.dialog.ToggleCard(ctx, ev.UserID, ev.Callback.Arg)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil {
		h.reply(ev.ChatID, msgUnknownChoice, nil)
		return
	}
	if !added {
		h.reply(ev.ChatID, msgSelectionFull, nil)
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(ev.ChatID, ev.MessageID, CardSelectionKeyboard(s.SelectedCards))
	if _, err := h.api.Request(edit); err != nil {
		h.log.Warnf("refresh selection keyboard for user %d: %v", ev.UserID, err)
	}
}

func (h *Handler) handleConfirmCards(ctx context.Context, ev *Event) {
	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil || len(s.SelectedCards) != constants.TarotSpreadSize {
		h.reply(ev.ChatID, msgNeedThreeCards, nil)
		return
	}
	h.performReading(ctx, ev, constants.DivinationTypeTarot, s.SelectedCards)
}

func (h *Handler) handleFollowUp(ctx context.Context, ev *Event) {
	h.sendTyping(ev.ChatID)
	out, err := h.dialog.FollowUp(ctx, ev.UserID, ev.Text)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if out == nil {
		h.reply(ev.ChatID, msgUnknownChoice, nil)
		return
	}
	if out.LimitReached {
		h.reply(ev.ChatID, msgFollowUpsSpent, MainMenuKeyboard())
		return
	}
	text := FormatInterpretation(out.Answer)
	if out.Remaining > 0 {
		text += fmt.Sprintf("\n\n<i>Осталось вопросов по раскладу: %d</i>", out.Remaining)
	} else {
		text += "\n\n<i>Это был последний вопрос по раскладу.</i>"
	}
	h.replyHTML(ev.ChatID, text, nil)
}

// ========== the draw ==========

// performReading drives the draw pipeline and renders the outcome.
func (h *Handler) performReading(ctx context.Context, ev *Event, dtype string, cardIDs []string) {
	wait := msgDrawing
	if dtype == constants.DivinationTypeIChing {
		wait = msgCasting
	}
	h.reply(ev.ChatID, wait, nil)
	h.sendTyping(ev.ChatID)

	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	question := ""
	if s != nil {
		question = s.Question
	}

	out, err := h.dialog.PerformReading(ctx, ev.UserID, dtype, question, cardIDs)
	if err != nil {
		if kratosErrors.Is(err, bizErrors.ErrNoBalance) {
			h.reply(ev.ChatID, msgPaywall, PackagesKeyboard())
			return
		}
		h.apologize(ev.ChatID, err)
		return
	}
	h.DeliverReading(ctx, ev.UserID, out)
}

// DeliverReading renders a completed reading to the user. Also used by the
// browser card-selection flow, which completes readings outside the poller.
func (h *Handler) DeliverReading(ctx context.Context, userID int64, out *biz.ReadingOutcome) {
	var b strings.Builder
	for _, item := range out.Items {
		if item.Position != "" {
			fmt.Fprintf(&b, "• %s: <b>%s</b>\n", item.Position, item.Name)
		} else {
			fmt.Fprintf(&b, "• <b>%s</b>\n", item.Name)
		}
	}
	b.WriteString("\n")
	b.WriteString(FormatInterpretation(out.Answer))
	b.WriteString("\n\n<i>")
	b.WriteString(msgFollowUpHint)
	b.WriteString("</i>")
	h.replyHTML(userID, b.String(), nil)
}

// NotifyPaywall tells a user the browser draw was refused for lack of balance.
func (h *Handler) NotifyPaywall(ctx context.Context, userID int64) {
	h.reply(userID, msgPaywall, PackagesKeyboard())
}

// ========== balance and purchase ==========

func (h *Handler) showBalance(ctx context.Context, ev *Event) {
	b, err := h.balance.Ensure(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("💰 <b>Твои гадания</b>\n\n")
	if b.UnlimitedUntil != nil && b.UnlimitedUntil.After(time.Now()) {
		fmt.Fprintf(&sb, "♾ Безлимит до %s\n", b.UnlimitedUntil.Format("02.01.2006"))
	}
	fmt.Fprintf(&sb, "🎁 Бесплатных: %d\n💳 Купленных: %d\n📿 Всего гаданий: %d", b.FreeRemaining, b.PaidRemaining, b.TotalUsed)

	if biz.ResolveTier(b, time.Now()) == biz.TierNone {
		h.conv.Record(&biz.Conversion{
			UserID:   ev.UserID,
			Type:     constants.ConversionPaywallReached,
			Metadata: map[string]string{"source": "balance_view"},
		})
		sb.WriteString("\n\n")
		sb.WriteString(msgPaywall)
		h.replyHTML(ev.ChatID, sb.String(), PackagesKeyboard())
		return
	}
	h.replyHTML(ev.ChatID, sb.String(), nil)
}

func (h *Handler) handleBuy(ctx context.Context, ev *Event) {
	if !h.payment.Enabled() {
		h.reply(ev.ChatID, msgPaymentsOff, nil)
		return
	}
	pkg := biz.PackageByID(ev.Callback.Arg)
	if pkg == nil {
		h.reply(ev.ChatID, msgUnknownChoice, PackagesKeyboard())
		return
	}

	u, err := h.users.Get(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}

	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil {
		s = &biz.Session{}
	}
	s.PackageID = pkg.ID

	if u != nil && u.Email != "" {
		s.State = biz.StateConfirmingEmail
		s.Email = u.Email
		if err := h.saveSessionVia(ctx, ev.UserID, s); err != nil {
			h.apologize(ev.ChatID, err)
			return
		}
		h.reply(ev.ChatID, "Отправить чек на этот email?", EmailConfirmKeyboard(u.Email))
		return
	}

	s.State = biz.StateWaitingEmail
	if err := h.saveSessionVia(ctx, ev.UserID, s); err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	h.reply(ev.ChatID, msgAskEmail, nil)
}

func (h *Handler) askEmail(ctx context.Context, ev *Event) {
	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil {
		h.reply(ev.ChatID, msgUnknownChoice, nil)
		return
	}
	s.State = biz.StateWaitingEmail
	s.Email = ""
	if err := h.saveSessionVia(ctx, ev.UserID, s); err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	h.reply(ev.ChatID, msgAskEmail, nil)
}

func (h *Handler) handleEmailInput(ctx context.Context, ev *Event, s *biz.Session) {
	email := strings.TrimSpace(ev.Text)
	if !emailRe.MatchString(email) {
		h.reply(ev.ChatID, msgBadEmail, nil)
		return
	}
	if err := h.users.SaveEmail(ctx, ev.UserID, email); err != nil {
		h.log.Errorf("save email for user %d: %v", ev.UserID, err)
	}
	s.Email = email
	h.createPayment(ctx, ev, s)
}

func (h *Handler) handleEmailYes(ctx context.Context, ev *Event) {
	s, err := h.dialog.Current(ctx, ev.UserID)
	if err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if s == nil || s.Email == "" {
		h.reply(ev.ChatID, msgAskEmail, nil)
		return
	}
	h.createPayment(ctx, ev, s)
}

func (h *Handler) createPayment(ctx context.Context, ev *Event, s *biz.Session) {
	pkg := biz.PackageByID(s.PackageID)
	if pkg == nil {
		h.reply(ev.ChatID, msgUnknownChoice, PackagesKeyboard())
		return
	}
	p, confirmationURL, err := h.payment.Create(ctx, ev.UserID, pkg, s.Email)
	if err != nil {
		h.reply(ev.ChatID, msgGatewayDown, nil)
		return
	}

	s.State = biz.StateWaitingPayment
	s.PaymentID = p.PaymentID
	if err := h.saveSessionVia(ctx, ev.UserID, s); err != nil {
		h.log.Errorf("save payment session for user %d: %v", ev.UserID, err)
	}

	text := fmt.Sprintf("💳 <b>%s</b> — %d ₽\n\nНажми «Оплатить», а после оплаты — «Я оплатил(а)».", pkg.Title, pkg.AmountKopecks/100)
	h.replyHTML(ev.ChatID, text, PaymentKeyboard(confirmationURL, p.PaymentID))
}

func (h *Handler) handleCheckPayment(ctx context.Context, ev *Event) {
	status, err := h.payment.CheckStatus(ctx, ev.Callback.Arg)
	if err != nil {
		h.reply(ev.ChatID, msgGatewayDown, nil)
		return
	}
	switch status {
	case constants.PaymentStatusSucceeded:
		// The success notifier already delivered the confirmation.
	case constants.PaymentStatusCanceled:
		if err := h.dialog.Cancel(ctx, ev.UserID); err != nil {
			h.log.Errorf("clear session for user %d: %v", ev.UserID, err)
		}
		h.reply(ev.ChatID, msgPaymentCanceled, MainMenuKeyboard())
	default:
		h.reply(ev.ChatID, msgPaymentPending, nil)
	}
}

// PaymentSucceeded implements biz.SuccessNotifier: message the buyer and end
// any payment session so the conversation restarts cleanly.
func (h *Handler) PaymentSucceeded(ctx context.Context, userID int64, pkg *biz.Package) {
	if err := h.dialog.Cancel(ctx, userID); err != nil {
		h.log.Errorf("clear session after payment for user %d: %v", userID, err)
	}
	var text string
	if pkg.UnlimitedDays > 0 {
		text = fmt.Sprintf("✅ Оплата получена! Безлимит на %d дней активирован ♾\n\nЗадай свой вопрос 👇", pkg.UnlimitedDays)
	} else {
		text = fmt.Sprintf("✅ Оплата получена! Начислено раскладов: %d 🔮\n\nЗадай свой вопрос 👇", pkg.Readings)
	}
	h.reply(userID, text, MainMenuKeyboard())
}

// ========== daily card ==========

func (h *Handler) handleDailyReveal(ev *Event) {
	c, ok := cardByID(ev.Callback.Arg)
	if !ok {
		h.reply(ev.ChatID, msgUnknownChoice, nil)
		return
	}
	text := fmt.Sprintf("🌅 Твоя карта дня — <b>%s</b>\n\n%s", c.Name, capitalize(c.Meaning))
	h.replyHTML(ev.ChatID, text, nil)
}

func (h *Handler) setDailySubscription(ctx context.Context, ev *Event, subscribed bool) {
	if err := h.users.SetDailyCardSubscribed(ctx, ev.UserID, subscribed); err != nil {
		h.apologize(ev.ChatID, err)
		return
	}
	if subscribed {
		h.reply(ev.ChatID, msgDailySubOn, nil)
	} else {
		h.reply(ev.ChatID, msgDailySubOff, DailySubscribeKeyboard())
	}
}

// ========== helpers ==========

func (h *Handler) backToMenu(ctx context.Context, ev *Event) {
	if err := h.dialog.Cancel(ctx, ev.UserID); err != nil {
		h.log.Errorf("clear session for user %d: %v", ev.UserID, err)
	}
	h.reply(ev.ChatID, msgBackToMenu, MainMenuKeyboard())
}

// saveSessionVia routes session writes through the dialog use case's store.
func (h *Handler) saveSessionVia(ctx context.Context, userID int64, s *biz.Session) error {
	return h.dialog.SaveSession(ctx, userID, s)
}

func (h *Handler) apologize(chatID int64, err error) {
	h.log.Errorf("handler error for chat %d: %v", chatID, err)
	h.reply(chatID, msgGeneratorDown, nil)
}

func (h *Handler) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	h.send(msg)
}

func (h *Handler) replyHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	h.send(msg)
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.api.Send(msg); err != nil {
		h.log.Errorf("send to chat %d: %v", msg.ChatID, err)
	}
}

func (h *Handler) sendTyping(chatID int64) {
	if _, err := h.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		h.log.Warnf("send typing to chat %d: %v", chatID, err)
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
