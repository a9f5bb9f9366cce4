package sms

import (
	"context"
	"fmt"
)

type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

const (
	ProviderNone   = "none"
	ProviderTwilio = "twilio"
	ProviderAWS    = "aws"
)

type Config struct {
	Provider string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	AWSRegion string
}

// NewProvider returns nil, nil when SMS is disabled.
func NewProvider(ctx context.Context, config *Config) (SMSProvider, error) {
	switch config.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderTwilio:
		if config.TwilioAccountSID == "" || config.TwilioAuthToken == "" {
			return nil, fmt.Errorf("twilio credentials are required for the twilio sms provider")
		}
		return NewTwilioProvider(config.TwilioAccountSID, config.TwilioAuthToken, config.TwilioFromNumber), nil
	case ProviderAWS:
		return NewAWSSNSProvider(ctx, config.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown sms provider %q", config.Provider)
	}
}
