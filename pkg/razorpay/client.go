package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rzpsdk "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/freshkart/orders-backend/pkg/config"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

var paiseFactor = decimal.NewFromInt(100)

// orderCreator matches the Razorpay SDK's order resource so tests can stub
// the wire call.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK with centralized credentials, logging, and
// error mapping. Credentials are injected at construction; nothing in this
// package reads the environment.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	timeout   time.Duration
	logger    *logger.Logger
}

// IntentParams describes the gateway order to open.
type IntentParams struct {
	// AmountRupees is the order total in rupees with at most two decimal
	// places. The gateway is paid in paise, so the adapter multiplies by 100.
	AmountRupees decimal.Decimal
	Currency     enums.Currency
	Receipt      string
}

// Intent is the gateway-side order opened for a checkout.
type Intent struct {
	OrderID     string
	AmountPaise int64
	Currency    enums.Currency
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sdk := rzpsdk.NewClient(keyID, keySecret)
	sdk.SetTimeout(timeoutSeconds(timeout))

	c := &Client{
		orders:    sdk.Order,
		keyID:     keyID,
		keySecret: keySecret,
		timeout:   timeout,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key identifier for checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// KeySecret returns the signing secret used for settlement verification.
func (c *Client) KeySecret() string {
	if c == nil {
		return ""
	}
	return c.keySecret
}

// CreateIntent opens a gateway order for the given rupee amount. Any SDK
// failure, including the bounded request timeout, surfaces as a dependency
// error so callers report the gateway as unavailable rather than leaking
// transport details.
func (c *Client) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	amountPaise, err := toPaise(params.AmountRupees)
	if err != nil {
		return nil, err
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyINR
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", params.Currency))
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount_paise": amountPaise,
		"currency":     currency.String(),
		"receipt":      params.Receipt,
	})

	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency.String(),
		"receipt":         params.Receipt,
		"payment_capture": 1,
	}

	resp, err := c.orders.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	orderID, _ := resp["id"].(string)
	if orderID == "" {
		c.log(ctx, "error", "create_order", map[string]any{"error": "response missing order id"})
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable")
	}

	intent := &Intent{
		OrderID:     orderID,
		AmountPaise: amountPaise,
		Currency:    currency,
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": intent.OrderID,
		"amount_paise":     intent.AmountPaise,
	})
	return intent, nil
}

// timeoutSeconds converts the bounded timeout to the whole seconds the SDK
// accepts, rounding up so a sub-second setting never disables the bound.
func timeoutSeconds(d time.Duration) int16 {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return int16(secs)
}

// toPaise converts a rupee amount to integer paise, rejecting non-positive
// amounts and sub-paisa precision.
func toPaise(amount decimal.Decimal) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	paise := amount.Mul(paiseFactor)
	if !paise.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be more precise than one paisa")
	}
	return paise.IntPart(), nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "signature", "token", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
