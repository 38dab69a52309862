package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

const metrikaCollectURL = "https://mc.yandex.ru/collect"

// metrikaPingTimeout caps every analytics hit; a slow counter must not stall
// the conversion worker.
const metrikaPingTimeout = 5 * time.Second

// metrikaClient sends Yandex Metrika Measurement Protocol hits.
type metrikaClient struct {
	httpClient *http.Client
	collectURL string
	counterID  string
	apiSecret  string
	log        *log.Helper
}

// NewAnalyticsPinger creates the Metrika client, or nil when the counter id
// is not configured (pings disabled; conversion rows are still written).
func NewAnalyticsPinger(c *conf.Bootstrap, logger log.Logger) biz.AnalyticsPinger {
	if c.Analytics == nil || !c.Analytics.Enabled() {
		log.NewHelper(logger).Info("metrika counter missing, analytics pings disabled")
		return nil
	}
	return &metrikaClient{
		httpClient: &http.Client{Timeout: metrikaPingTimeout},
		collectURL: metrikaCollectURL,
		counterID:  c.Analytics.CounterID,
		apiSecret:  c.Analytics.APISecret,
		log:        log.NewHelper(logger),
	}
}

// SendHit posts one event hit to the counter.
func (c *metrikaClient) SendHit(ctx context.Context, conv *biz.Conversion) error {
	clientID := conv.ClientID
	if clientID == "" {
		clientID = strconv.FormatInt(conv.UserID, 10)
	}

	params := url.Values{}
	params.Set("tid", c.counterID)
	params.Set("cid", clientID)
	params.Set("t", "event")
	params.Set("ea", conv.Type)
	if conv.PackageID != "" {
		params.Set("el", conv.PackageID)
	}
	if conv.Value > 0 {
		params.Set("ev", strconv.Itoa(int(conv.Value)))
	}
	if c.apiSecret != "" {
		params.Set("ms", c.apiSecret)
	}

	ctx, cancel := context.WithTimeout(ctx, metrikaPingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.collectURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("metrika: unexpected status %d", resp.StatusCode)
	}
	return nil
}
