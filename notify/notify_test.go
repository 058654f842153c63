package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-task-auth/notify"
)

func TestWelcome(t *testing.T) {
	msg := notify.Welcome("derek@example.com", "Derek")

	assert.Equal(t, "derek@example.com", msg.To)
	assert.Equal(t, "Derek", msg.Name)
	assert.Equal(t, "Thanks for joining in!", msg.Subject)
	assert.Equal(t, "Welcome to the app, Derek. Let me know how you get along with the app.", msg.Body)
}

func TestFarewell(t *testing.T) {
	msg := notify.Farewell("derek@example.com", "Derek")

	assert.Equal(t, "Sorry to see you go!", msg.Subject)
	assert.Equal(t, "Thanks for using the app Derek, I'm sad to see you go. I hope to see you back sometime soon", msg.Body)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, n.Send(context.Background(), notify.Welcome("derek@example.com", "Derek")))
	assert.Contains(t, buf.String(), `"to":"derek@example.com"`)
	assert.Contains(t, buf.String(), `"subject":"Thanks for joining in!"`)
}

func TestNewMailer_RequiresHostAndSender(t *testing.T) {
	_, err := notify.NewMailer(notify.MailerConfig{From: "app@example.com"})
	assert.Error(t, err)

	_, err = notify.NewMailer(notify.MailerConfig{Host: "localhost"})
	assert.Error(t, err)

	m, err := notify.NewMailer(notify.MailerConfig{Host: "localhost", Port: 2525, From: "app@example.com", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
