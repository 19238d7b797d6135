package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

var alice = &models.User{ID: "u1", Email: "alice@example.com", Username: "alice"}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	sink := &MemorySink{}
	d := NewDispatcher(sink, logging.NewNop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	d.SendVerificationEmail(ctx, alice, "http://x/v1/auth/verify/u1/t/")
	cancel()
	d.Wait()

	msgs := sink.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Message{UserID: "u1", To: "alice@example.com", URL: "http://x/v1/auth/verify/u1/t/"}, msgs[0])
}

func TestDispatcher_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	sink := &MemorySink{Err: errors.New("smtp down")}
	d := NewDispatcher(sink, logging.NewJSONLogger(&buf, "debug"), time.Second)

	d.SendVerificationEmail(context.Background(), alice, "url")
	d.Wait()

	assert.Empty(t, sink.Messages())
	assert.Contains(t, buf.String(), "verification email not delivered")
	assert.Contains(t, buf.String(), "smtp down")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logging.NewJSONLogger(&buf, "info"))

	require.NoError(t, s.SendVerificationEmail(context.Background(), alice, "http://x/link"))
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.Contains(t, buf.String(), "http://x/link")
}
