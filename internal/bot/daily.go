package bot

import (
	"context"
	"strings"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"
	"divination-bot/internal/deck"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendInterval spaces out daily broadcasts to stay under the flood limit.
const sendInterval = 100 * time.Millisecond

func cardByID(id string) (deck.Card, bool) {
	return deck.CardByID(id)
}

// DailyCardJob broadcasts the card-of-the-day teaser to subscribed users.
type DailyCardJob struct {
	api   *tgbotapi.BotAPI
	users *biz.UserUseCase
	log   *log.Helper
}

// NewDailyCardJob creates the broadcast job.
func NewDailyCardJob(api *tgbotapi.BotAPI, users *biz.UserUseCase, logger log.Logger) *DailyCardJob {
	return &DailyCardJob{api: api, users: users, log: log.NewHelper(logger)}
}

// SendDailyCards offers three face-down cards to every subscriber. A failure
// for one user never stops the run; users who blocked the bot are marked so
// the next run skips them.
func (j *DailyCardJob) SendDailyCards(ctx context.Context) {
	recipients, err := j.users.DailyCardRecipients(ctx)
	if err != nil {
		j.log.Errorf("list daily card recipients: %v", err)
		return
	}
	j.log.Infof("daily card broadcast to %d users", len(recipients))

	m := metrics.GetMetrics()
	sent, failed := 0, 0
	for _, u := range recipients {
		select {
		case <-ctx.Done():
			j.log.Warnf("daily card broadcast interrupted after %d sends", sent)
			return
		default:
		}

		cards := deck.DrawCards(constants.TarotSpreadSize)
		msg := tgbotapi.NewMessage(u.UserID, msgDailyCardIntro)
		msg.ReplyMarkup = DailyCardKeyboard(cards)
		if _, err := j.api.Send(msg); err != nil {
			failed++
			if m != nil {
				m.DailyCardsSentTotal.WithLabelValues(constants.ResultFailed).Inc()
			}
			if isBlockedErr(err) {
				if berr := j.users.MarkBlocked(ctx, u.UserID); berr != nil {
					j.log.Errorf("mark user %d blocked: %v", u.UserID, berr)
				}
				continue
			}
			j.log.Warnf("daily card to user %d: %v", u.UserID, err)
			continue
		}
		sent++
		if m != nil {
			m.DailyCardsSentTotal.WithLabelValues(constants.ResultSuccess).Inc()
		}
		time.Sleep(sendInterval)
	}
	j.log.Infof("daily card broadcast done: sent=%d failed=%d", sent, failed)
}

// isBlockedErr detects the platform's "bot was blocked by the user" refusal.
func isBlockedErr(err error) bool {
	if tgErr, ok := err.(*tgbotapi.Error); ok {
		if tgErr.Code == 403 {
			return true
		}
		return strings.Contains(strings.ToLower(tgErr.Message), "blocked")
	}
	return false
}
