package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, &Config{Provider: ProviderNone})
	require.NoError(t, err)
	assert.Nil(t, provider)

	_, err = NewProvider(ctx, &Config{Provider: ProviderTwilio})
	assert.Error(t, err, "twilio requires credentials")

	provider, err = NewProvider(ctx, &Config{
		Provider:         ProviderTwilio,
		TwilioAccountSID: "AC00000000000000000000000000000000",
		TwilioAuthToken:  "token",
		TwilioFromNumber: "+15550000000",
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = NewProvider(ctx, &Config{Provider: "pigeon"})
	assert.Error(t, err)
}
