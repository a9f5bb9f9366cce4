package config

import "ecowaste/pkg/sms"

type SMSConfig struct {
	Provider string        `yaml:"provider"`
	Twilio   *TwilioConfig `yaml:"twilio"`
	AWS      *AWSSNSConfig `yaml:"aws"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region string `yaml:"region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider: getEnv("SMS_PROVIDER", "none"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
	}
}

func (s *SMSConfig) ToSMSConfig() *sms.Config {
	return &sms.Config{
		Provider:         s.Provider,
		TwilioAccountSID: s.Twilio.AccountSID,
		TwilioAuthToken:  s.Twilio.AuthToken,
		TwilioFromNumber: s.Twilio.FromNumber,
		AWSRegion:        s.AWS.Region,
	}
}
