// Package messaging defines the outbound message delivery abstraction and
// its implementations: a Twilio-backed sender for production and in-memory /
// logging senders for tests and unconfigured deployments.
//
// The Sender interface is intentionally narrow (one blocking call per
// message) so the dispatch loop can treat any provider uniformly and tests
// can substitute stubs without touching HTTP or SDK code.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Receipt is the provider acknowledgement for one accepted message.
type Receipt struct {
	// SID is the provider-assigned message identifier.
	SID string
	// Status is the provider's initial delivery status (e.g., "queued").
	Status string
}

// Sender delivers one message body to one E.164 destination. Implementations
// must be safe for concurrent use; the dispatch loop may run from multiple
// requests at once.
type Sender interface {
	Send(ctx context.Context, to, body string) (*Receipt, error)
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, to, body string) (*Receipt, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, to, body string) (*Receipt, error) {
	return f(ctx, to, body)
}

// ErrNotConfigured is returned by senders that have no usable provider
// credentials behind them.
var ErrNotConfigured = errors.New("messaging provider not configured")

// SentMessage records one delivery accepted by MemorySender.
type SentMessage struct {
	To   string
	Body string
}

// MemorySender is a Sender that records messages instead of transmitting
// them. Err, when set, is returned for every send. Safe for concurrent use.
type MemorySender struct {
	mu   sync.Mutex
	sent []SentMessage

	// Err fails every Send when non-nil.
	Err error
}

// Send implements Sender.
func (m *MemorySender) Send(_ context.Context, to, body string) (*Receipt, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{To: to, Body: body})
	return &Receipt{
		SID:    fmt.Sprintf("SM%08d", len(m.sent)),
		Status: "queued",
	}, nil
}

// Sent returns a copy of the recorded messages in send order.
func (m *MemorySender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// NewLogSender returns a Sender for deployments without provider
// credentials: each message is logged instead of transmitted and reported
// with a "simulated" status. This keeps local development and the /status
// route functional while making the missing configuration loud.
func NewLogSender() Sender {
	var n int
	var mu sync.Mutex
	return SenderFunc(func(_ context.Context, to, body string) (*Receipt, error) {
		mu.Lock()
		n++
		seq := n
		mu.Unlock()
		log.Warn().
			Str("to", to).
			Int("body_len", len(body)).
			Msg("messaging provider not configured; message logged, not sent")
		return &Receipt{SID: fmt.Sprintf("SM-local-%d", seq), Status: "simulated"}, nil
	})
}
