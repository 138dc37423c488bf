package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"woodeoo-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureNotifier struct {
	sent []Message
	err  error
}

func (c *captureNotifier) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	email := &captureNotifier{}
	sms := &captureNotifier{}
	d := &Dispatcher{Email: email, SMS: sms}

	require.NoError(t, d.Send(context.Background(), Message{Channel: ChannelEmail, To: "jane@woodeoo.com"}))
	require.NoError(t, d.Send(context.Background(), Message{Channel: ChannelSMS, To: "+33612345678"}))

	assert.Len(t, email.sent, 1)
	assert.Len(t, sms.sent, 1)
	assert.Equal(t, "+33612345678", sms.sent[0].To)
}

func TestDispatcher_NoRoute(t *testing.T) {
	d := &Dispatcher{Email: &captureNotifier{}}
	err := d.Send(context.Background(), Message{Channel: ChannelSMS})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestSMTPNotifier_BuildsMessage(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: 1025, From: "noreply@woodeoo.com", FromName: "Woodeoo"}, zap.NewNop())

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Nil(t, a, "no auth without credentials")
		return nil
	}

	err := n.Send(context.Background(), Message{To: "jane@woodeoo.com", Subject: "Your code", Body: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, []string{"jane@woodeoo.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "From: Woodeoo <noreply@woodeoo.com>\r\n")
	assert.Contains(t, string(gotMsg), "Subject: Your code\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\n123456")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "mail.local", Port: 25}, zap.NewNop())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	assert.Error(t, n.Send(context.Background(), Message{To: "jane@woodeoo.com"}))
}

func TestSMSNotifier_PostsJSON(t *testing.T) {
	var got smsPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewSMSNotifier(srv.URL, "key-1", "WOODEOO", zap.NewNop())
	require.NoError(t, n.Send(context.Background(), Message{Channel: ChannelSMS, To: "+33612345678", Body: "Code 123456"}))

	assert.Equal(t, smsPayload{To: "+33612345678", Sender: "WOODEOO", Text: "Code 123456"}, got)
}

func TestSMSNotifier_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad number", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewSMSNotifier(srv.URL, "key-1", "", zap.NewNop())
	assert.Error(t, n.Send(context.Background(), Message{To: "+1"}))

	unconfigured := NewSMSNotifier("", "", "", zap.NewNop())
	assert.Error(t, unconfigured.Send(context.Background(), Message{To: "+1"}))
}

func TestNewFromConfig(t *testing.T) {
	d := NewFromConfig(utils.EmailConfig{}, utils.SMSConfig{}, zap.NewNop())
	assert.IsType(t, &LogNotifier{}, d.Email)
	assert.IsType(t, &LogNotifier{}, d.SMS)

	d = NewFromConfig(
		utils.EmailConfig{Host: "smtp.woodeoo.com", Port: 587, From: "noreply@woodeoo.com"},
		utils.SMSConfig{Endpoint: "https://sms.example/send", APIKey: "k"},
		zap.NewNop(),
	)
	assert.IsType(t, &SMTPNotifier{}, d.Email)
	assert.IsType(t, &SMSNotifier{}, d.SMS)
}
