package builder

import "github.com/Egham-7/llmonitor-api/internal/models"

// WithStripe enables Pro upgrades through Stripe Checkout for priceID.
func (b *Builder) WithStripe(secretKey, webhookSecret, priceID string) *Builder {
	if b.cfg.Billing == nil {
		b.cfg.Billing = &models.StripeConfig{}
	}
	b.cfg.Billing.SecretKey = secretKey
	b.cfg.Billing.WebhookSecret = webhookSecret
	b.cfg.Billing.ProPriceID = priceID
	return b
}

// WithCheckoutURLs sets where Stripe sends the user after checkout.
func (b *Builder) WithCheckoutURLs(successURL, cancelURL string) *Builder {
	if b.cfg.Billing == nil {
		b.cfg.Billing = &models.StripeConfig{}
	}
	b.cfg.Billing.SuccessURL = successURL
	b.cfg.Billing.CancelURL = cancelURL
	return b
}

func (b *Builder) GetStripeConfig() (secretKey, webhookSecret string, configured bool) {
	if b.cfg.Billing != nil && b.cfg.Billing.SecretKey != "" {
		return b.cfg.Billing.SecretKey, b.cfg.Billing.WebhookSecret, true
	}
	return "", "", false
}
