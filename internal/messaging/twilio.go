// Twilio-backed Sender implementation.
package messaging

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/guardline/go-alert-backend/internal/phone"
	"github.com/guardline/go-alert-backend/internal/sysutil"
)

// TwilioOpts holds the credentials and sender identity for the Twilio client.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	From       string // sending number in E.164 form
}

// TwilioOption configures TwilioOpts.
type TwilioOption func(*TwilioOpts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithFrom sets the sending phone number.
func WithFrom(from string) TwilioOption {
	return func(o *TwilioOpts) { o.From = from }
}

// TwilioSender delivers SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a TwilioSender from options, falling back to the
// TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_FROM_NUMBER environment
// variables for anything not supplied. Missing credentials yield
// ErrNotConfigured so callers can degrade to NewLogSender.
func NewTwilioSender(opts ...TwilioOption) (*TwilioSender, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.AccountSID = sysutil.FirstNonEmpty(cfg.AccountSID, os.Getenv("TWILIO_ACCOUNT_SID"))
	cfg.AuthToken = sysutil.FirstNonEmpty(cfg.AuthToken, os.Getenv("TWILIO_AUTH_TOKEN"))
	cfg.From = sysutil.FirstNonEmpty(cfg.From, os.Getenv("TWILIO_FROM_NUMBER"))
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrNotConfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{client: client, from: cfg.From}, nil
}

// Send transmits one SMS. The destination is normalized once more before
// transmission; upstream validation decides whether a number is acceptable
// at all, this is only canonicalization for the wire.
func (s *TwilioSender) Send(_ context.Context, to, body string) (*Receipt, error) {
	dest := phone.Normalize(to)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(dest)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Error().Err(err).Str("to", dest).Msg("twilio send failed")
		return nil, fmt.Errorf("twilio send to %s: %w", dest, err)
	}

	rcpt := &Receipt{}
	if msg.Sid != nil {
		rcpt.SID = *msg.Sid
	}
	if msg.Status != nil {
		rcpt.Status = *msg.Status
	}
	log.Debug().Str("sid", rcpt.SID).Str("status", rcpt.Status).Msg("twilio message accepted")
	return rcpt, nil
}
