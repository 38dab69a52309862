package conf

import "time"

// Duration is a config-friendly duration ("30s", "5m").
type Duration string

// AsDuration parses the value, returning zero on empty or malformed input.
func (d Duration) AsDuration() time.Duration {
	if d == "" {
		return 0
	}
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// Bootstrap is the root configuration scanned from configs/config.yaml.
type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Bot       *Bot       `json:"bot"`
	Payment   *Payment   `json:"payment"`
	OpenAI    *OpenAI    `json:"openai"`
	Analytics *Analytics `json:"analytics"`
}

// Server holds transport configuration.
type Server struct {
	HTTP *HTTP `json:"http"`
}

// HTTP listener settings for the webhook/webapp/health surface.
type HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// Data holds datastore configuration.
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

// Database is the Postgres connection configuration.
type Database struct {
	Source       string `json:"source"`
	TableSuffix  string `json:"table_suffix"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
	AutoMigrate  bool   `json:"auto_migrate"`
}

// Redis is the session/lock store configuration.
type Redis struct {
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	DB           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// Bot is the chat platform configuration.
type Bot struct {
	Token       string     `json:"token"`
	AdminChatID int64      `json:"admin_chat_id"`
	WebAppURL   string     `json:"webapp_url"`
	DailyCard   *DailyCard `json:"daily_card"`
}

// DailyCard configures the proactive daily push.
type DailyCard struct {
	// Schedule is a 6-field cron expression, seconds first.
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone"`
}

// Payment is the YooKassa gateway configuration. The payment flow and the
// HTTP listener are disabled when ShopID or SecretKey is empty.
type Payment struct {
	ShopID    string `json:"shop_id"`
	SecretKey string `json:"secret_key"`
	ReturnURL string `json:"return_url"`
}

// Enabled reports whether gateway credentials are configured.
func (p *Payment) Enabled() bool {
	return p != nil && p.ShopID != "" && p.SecretKey != ""
}

// OpenAI is the interpretation generator configuration.
type OpenAI struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// Analytics is the Yandex Metrika Measurement Protocol configuration.
// Pings are disabled when CounterID is empty; rows are always written.
type Analytics struct {
	CounterID string `json:"counter_id"`
	APISecret string `json:"api_secret"`
	QueueSize int    `json:"queue_size"`
}

// Enabled reports whether Metrika pings should be sent.
func (a *Analytics) Enabled() bool {
	return a != nil && a.CounterID != ""
}
