package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const yookassaBaseURL = "https://api.yookassa.ru/v3"

// yooKassaClient is the payment gateway HTTP client.
type yooKassaClient struct {
	httpClient *http.Client
	baseURL    string
	shopID     string
	secretKey  string
	returnURL  string
	log        *log.Helper
}

// NewGatewayClient creates the YooKassa client, or nil when gateway
// credentials are not configured (payment flow disabled).
func NewGatewayClient(c *conf.Bootstrap, logger log.Logger) biz.GatewayClient {
	if c.Payment == nil || !c.Payment.Enabled() {
		log.NewHelper(logger).Info("payment gateway credentials missing, payment flow disabled")
		return nil
	}
	return newYooKassaClient(c.Payment, &http.Client{Timeout: 30 * time.Second}, yookassaBaseURL, logger)
}

func newYooKassaClient(c *conf.Payment, hc *http.Client, baseURL string, logger log.Logger) *yooKassaClient {
	return &yooKassaClient{
		httpClient: hc,
		baseURL:    baseURL,
		shopID:     c.ShopID,
		secretKey:  c.SecretKey,
		returnURL:  c.ReturnURL,
		log:        log.NewHelper(logger),
	}
}

type yooKassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yooKassaConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type yooKassaReceiptItem struct {
	Description    string         `json:"description"`
	Quantity       string         `json:"quantity"`
	Amount         yooKassaAmount `json:"amount"`
	VatCode        int            `json:"vat_code"`
	PaymentSubject string         `json:"payment_subject"`
	PaymentMode    string         `json:"payment_mode"`
}

type yooKassaReceipt struct {
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Items []yooKassaReceiptItem `json:"items"`
}

type yooKassaCreateRequest struct {
	Amount       yooKassaAmount       `json:"amount"`
	Capture      bool                 `json:"capture"`
	Confirmation yooKassaConfirmation `json:"confirmation"`
	Description  string               `json:"description"`
	Metadata     map[string]string    `json:"metadata,omitempty"`
	Receipt      *yooKassaReceipt     `json:"receipt,omitempty"`
}

type yooKassaPayment struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Paid         bool                  `json:"paid"`
	Confirmation *yooKassaConfirmation `json:"confirmation"`
	Metadata     map[string]string     `json:"metadata"`
}

func kopecksToValue(kopecks int64) string {
	return fmt.Sprintf("%d.%02d", kopecks/100, kopecks%100)
}

// CreatePayment opens a redirect-confirmed payment with an Idempotence-Key.
func (c *yooKassaClient) CreatePayment(ctx context.Context, amountKopecks int64, description, email string, metadata map[string]string) (*biz.PaymentIntent, error) {
	reqBody := yooKassaCreateRequest{
		Amount:       yooKassaAmount{Value: kopecksToValue(amountKopecks), Currency: "RUB"},
		Capture:      true,
		Confirmation: yooKassaConfirmation{Type: "redirect", ReturnURL: c.returnURL},
		Description:  description,
		Metadata:     metadata,
	}
	if email != "" {
		receipt := &yooKassaReceipt{
			Items: []yooKassaReceiptItem{{
				Description:    description,
				Quantity:       "1",
				Amount:         reqBody.Amount,
				VatCode:        1,
				PaymentSubject: "service",
				PaymentMode:    "full_payment",
			}},
		}
		receipt.Customer.Email = email
		reqBody.Receipt = receipt
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())
	req.SetBasicAuth(c.shopID, c.secretKey)

	var p yooKassaPayment
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	intent := &biz.PaymentIntent{ID: p.ID}
	if p.Confirmation != nil {
		intent.ConfirmationURL = p.Confirmation.ConfirmationURL
	}
	return intent, nil
}

// GetPayment fetches the gateway's view of an intent.
func (c *yooKassaClient) GetPayment(ctx context.Context, paymentID string) (*biz.GatewayPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.shopID, c.secretKey)

	var p yooKassaPayment
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &biz.GatewayPayment{
		ID:       p.ID,
		Status:   p.Status,
		Paid:     p.Paid,
		Metadata: p.Metadata,
	}, nil
}

func (c *yooKassaClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Errorf("yookassa %s %s: status %d body %s", req.Method, req.URL.Path, resp.StatusCode, body)
		return fmt.Errorf("yookassa: unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
