package models

type StripeConfig struct {
	SecretKey     string `json:"secret_key" yaml:"secret_key"`
	WebhookSecret string `json:"webhook_secret" yaml:"webhook_secret"`
	ProPriceID    string `json:"pro_price_id" yaml:"pro_price_id"`
	SuccessURL    string `json:"success_url" yaml:"success_url"`
	CancelURL     string `json:"cancel_url" yaml:"cancel_url"`
}
