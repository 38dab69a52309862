package constants

// Redis key prefixes.
const (
	// RedisKeySession conversation session key prefix
	RedisKeySession = "session:"
	// RedisKeyConsumeLock balance consumption lock key prefix
	RedisKeyConsumeLock = "consume:lock:"
)

// Divination types.
const (
	// DivinationTypeTarot three-card tarot spread
	DivinationTypeTarot = "tarot"
	// DivinationTypeIChing single hexagram
	DivinationTypeIChing = "iching"
)

// Payment intent statuses (mirror the gateway's vocabulary).
const (
	// PaymentStatusPending awaiting confirmation
	PaymentStatusPending = "pending"
	// PaymentStatusSucceeded paid, terminal
	PaymentStatusSucceeded = "succeeded"
	// PaymentStatusCanceled canceled or expired, terminal
	PaymentStatusCanceled = "canceled"
)

// Conversion event types.
const (
	// ConversionRegistration first contact with the bot
	ConversionRegistration = "registration"
	// ConversionPaywallReached draw attempted with no balance
	ConversionPaywallReached = "paywall_reached"
	// ConversionServiceUsage completed reading
	ConversionServiceUsage = "service_usage"
	// ConversionPurchase successful payment
	ConversionPurchase = "purchase"
)

// Balance policy.
const (
	// InitialFreeReadings granted on registration
	InitialFreeReadings = 3
	// UnlimitedPackageDays subscription length of the unlimited package
	UnlimitedPackageDays = 30
	// FreeFollowUpLimit follow-up questions per free reading
	FreeFollowUpLimit = 2
	// PaidFollowUpLimit follow-up questions per paid reading
	PaidFollowUpLimit = 5
)

// TarotSpreadSize cards per spread.
const TarotSpreadSize = 3

// Webhook dedup set bound; the set is cleared when it grows past this.
const WebhookDedupCap = 1000

// ConversionQueueCap default bound of the analytics work queue.
const ConversionQueueCap = 256

// Metric result labels.
const (
	// ResultSuccess operation succeeded
	ResultSuccess = "success"
	// ResultFailed operation failed
	ResultFailed = "failed"
	// ResultDenied operation denied (no balance)
	ResultDenied = "denied"
	// ResultDuplicate already-processed event
	ResultDuplicate = "duplicate"
	// ResultIgnored recognized but irrelevant event
	ResultIgnored = "ignored"
)
