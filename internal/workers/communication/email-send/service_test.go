package emailsend

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	commonaws "news-intel/internal/common/aws"
	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *models.EmailMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockSender) Name() string { return "mock" }

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

// ==========================
// Fake SMTP server
// ==========================

type smtpSession struct {
	mu       sync.Mutex
	commands []string
	data     string
}

func (s *smtpSession) record(cmd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
}

// startSMTPServer accepts one plain-text session and rejects AUTH when rejectAuth is set.
func startSMTPServer(t *testing.T, rejectAuth bool) (int, *smtpSession) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	session := &smtpSession{}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
		reply("220 localhost ESMTP test")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			session.record(verb)

			switch verb {
			case "EHLO", "HELO":
				reply("250-localhost")
				reply("250 AUTH PLAIN")
			case "AUTH":
				if rejectAuth {
					reply("535 5.7.8 Authentication credentials invalid")
				} else {
					reply("235 2.7.0 Authentication successful")
				}
			case "MAIL", "RCPT":
				reply("250 OK")
			case "DATA":
				reply("354 End data with <CR><LF>.<CR><LF>")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				session.mu.Lock()
				session.data = body.String()
				session.mu.Unlock()
				reply("250 OK queued")
			case "QUIT":
				reply("221 Bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, session
}

// ==========================
// Test Helpers
// ==========================

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.DefaultFrom = "intel@example.com"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestService(t *testing.T, sender Sender) *Service {
	return NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Sender: sender}, testConfig())
}

// ==========================
// Service
// ==========================

func TestService_Subject(t *testing.T) {
	svc := newTestService(t, new(MockSender))
	assert.Equal(t, "Weekly Intel: Ana", svc.Subject("Ana", false))
	assert.Equal(t, "Weekly Intel (Raw): Ana", svc.Subject("Ana", true))
}

func TestService_Send_Success(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *models.EmailMessage) bool {
		return msg.From == "intel@example.com" &&
			msg.To == "ana@example.com" &&
			msg.Subject == "Weekly Intel: Ana" &&
			msg.Body == "digest" &&
			msg.ID != ""
	})).Return("<id@example.com>", nil).Once()

	out := newTestService(t, sender).Send(context.Background(), " ana@example.com ", "Weekly Intel: Ana", "digest")

	assert.True(t, out.Success)
	assert.Equal(t, "<id@example.com>", out.MessageID)
	assert.Equal(t, "mock", out.Provider)
	assert.False(t, out.SentAt.IsZero())
	sender.AssertExpectations(t)
}

func TestService_Send_FailureIsReported(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).
		Return("", apperrors.NewAuthError("smtp", assert.AnError))

	out := newTestService(t, sender).Send(context.Background(), "ana@example.com", "s", "b")

	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "AUTH_ERROR")
}

func TestService_Send_InvalidRecipient(t *testing.T) {
	sender := new(MockSender)

	out := newTestService(t, sender).Send(context.Background(), "not-an-address", "s", "b")

	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "VALIDATION_FAILED")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

// ==========================
// SMTP sender
// ==========================

func smtpConfig(port int) *Config {
	cfg := testConfig()
	cfg.SMTPHost = "127.0.0.1"
	cfg.SMTPPort = port
	cfg.SMTPUsername = "intel@example.com"
	cfg.SMTPPassword = "app-password"
	cfg.UseTLS = false
	return cfg
}

func TestSMTPSender_Send(t *testing.T) {
	port, session := startSMTPServer(t, false)
	sender := NewSMTPSender(smtpConfig(port))

	msg := &models.EmailMessage{
		ID:      "run-1",
		From:    "intel@example.com",
		To:      "ana@example.com",
		Subject: "Weekly Intel: Ana",
		Body:    "Line one\nLine two",
		Created: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}

	id, err := sender.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "<run-1@example.com>", id)

	session.mu.Lock()
	defer session.mu.Unlock()
	assert.Equal(t, []string{"EHLO", "AUTH", "MAIL", "RCPT", "DATA", "QUIT"}, session.commands)
	assert.Contains(t, session.data, "To: ana@example.com\r\n")
	assert.Contains(t, session.data, "Subject: Weekly Intel: Ana\r\n")
	assert.Contains(t, session.data, "Message-ID: <run-1@example.com>\r\n")
	assert.Contains(t, session.data, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, session.data, "Line one\r\nLine two")
}

func TestSMTPSender_AuthFailure(t *testing.T) {
	port, _ := startSMTPServer(t, true)
	sender := NewSMTPSender(smtpConfig(port))

	_, err := sender.Send(context.Background(), &models.EmailMessage{
		ID: "x", From: "intel@example.com", To: "ana@example.com", Subject: "s", Body: "b",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAuth, apperrors.CodeOf(err))
}

func TestSMTPSender_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender := NewSMTPSender(smtpConfig(port))
	_, err = sender.Send(context.Background(), &models.EmailMessage{ID: "x", From: "a@b.co", To: "c@d.co"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestService_SendOverSMTPKeepsGoingAfterFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := smtpConfig(port)
	svc := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Sender: NewSMTPSender(cfg)}, cfg)

	out := svc.Send(context.Background(), "ana@example.com", "s", "b")
	assert.False(t, out.Success)
	assert.Equal(t, "smtp", out.Provider)
}

// ==========================
// SES and log senders
// ==========================

func TestSESSender_Send(t *testing.T) {
	api := new(MockSES)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "intel@example.com" &&
			len(in.Destination.ToAddresses) == 1 &&
			in.Destination.ToAddresses[0] == "ana@example.com" &&
			aws.ToString(in.Message.Subject.Data) == "Weekly Intel: Ana" &&
			aws.ToString(in.Message.Body.Text.Data) == "digest"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil).Once()

	sender := NewSESSender(commonaws.NewSESClientFromAPI(api))
	id, err := sender.Send(context.Background(), &models.EmailMessage{
		From: "intel@example.com", To: "ana@example.com", Subject: "Weekly Intel: Ana", Body: "digest",
	})

	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)
	api.AssertExpectations(t)
}

func TestSESSender_Error(t *testing.T) {
	api := new(MockSES)
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := NewSESSender(commonaws.NewSESClientFromAPI(api)).Send(context.Background(), &models.EmailMessage{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(logger.NewTestLogger(t))
	id, err := sender.Send(context.Background(), &models.EmailMessage{ID: "abc", From: "intel@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "<abc@example.com>", id)
}

func TestBuildMIME_EncodesNonASCIISubject(t *testing.T) {
	raw, err := buildMIME(&models.EmailMessage{
		ID: "1", From: "a@example.com", To: "b@example.com", Subject: "Résumé digest", Body: "ok",
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: =?UTF-8?q?R=C3=A9sum=C3=A9_digest?=\r\n")
	assert.True(t, strings.HasPrefix(string(raw), "From: a@example.com\r\n"))
}

func TestConfig_Validate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.Validate())

	cfg.SMTPPort = 0
	assert.Error(t, cfg.Validate())

	cfg.Provider = "log"
	assert.NoError(t, cfg.Validate())

	cfg.DefaultFrom = ""
	assert.Error(t, cfg.Validate())
}
