// Package notify delivers outbound user notifications. Delivery is best
// effort: failures are logged and never reach the operation that caused them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

// Sink delivers a verification link to a user.
type Sink interface {
	SendVerificationEmail(ctx context.Context, user *models.User, verificationURL string) error
}

// LogSink writes the message to the log instead of sending it.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{log: log.With("module", "notify")}
}

func (s *LogSink) SendVerificationEmail(ctx context.Context, user *models.User, verificationURL string) error {
	s.log.Info(ctx, "verification email", "to", user.Email, "username", user.Username, "url", verificationURL)
	return nil
}

// Message is a notification captured by MemorySink.
type Message struct {
	UserID string
	To     string
	URL    string
}

// MemorySink records messages; tests read them back with Messages.
type MemorySink struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (s *MemorySink) SendVerificationEmail(_ context.Context, user *models.User, verificationURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, Message{UserID: user.ID, To: user.Email, URL: verificationURL})
	return nil
}

// Messages returns a copy of everything sent so far.
func (s *MemorySink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// Dispatcher sends through a Sink in the background.
type Dispatcher struct {
	sink    Sink
	log     logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher giving each delivery up to timeout.
func NewDispatcher(sink Sink, log logging.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sink: sink, log: log.With("module", "notify"), timeout: timeout}
}

// SendVerificationEmail queues delivery and returns immediately. The
// delivery outlives ctx cancellation but keeps its values.
func (d *Dispatcher) SendVerificationEmail(ctx context.Context, user *models.User, verificationURL string) {
	u := *user
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sink.SendVerificationEmail(ctx, &u, verificationURL); err != nil {
			d.log.Warn(ctx, "verification email not delivered", "user_id", u.ID, "error", err)
		}
	}()
}

// Wait blocks until every queued delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
