package payment

import (
	"fmt"
	"strings"
	"time"
)

const (
	paystackDefaultBaseURL = "https://api.paystack.co"
	paystackDefaultTimeout = 30 * time.Second
)

// PaystackConfig holds configuration for the Paystack gateway
type PaystackConfig struct {
	// SecretKey is the Paystack secret key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// BaseURL is the API root, overridable for tests
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Timeout bounds every gateway request
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Validate validates the Paystack configuration
func (c *PaystackConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("paystack: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") {
		return fmt.Errorf("paystack: secret key must start with sk_")
	}
	if c.BaseURL == "" {
		c.BaseURL = paystackDefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = paystackDefaultTimeout
	}
	return nil
}

// IsTestMode reports whether the key belongs to a Paystack test account
func (c *PaystackConfig) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test")
}
