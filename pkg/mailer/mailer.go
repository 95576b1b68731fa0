package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

func ConfigFromEnv() Config {
	cfg := Config{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		FromName: "Signalist",
		Port:     587,
		UseTLS:   true,
	}

	if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && port > 0 {
		cfg.Port = port
	}

	if name := os.Getenv("SMTP_FROM_NAME"); name != "" {
		cfg.FromName = name
	}

	if v := os.Getenv("SMTP_USE_TLS"); v != "" {
		cfg.UseTLS = strings.ToLower(v) == "true" || v == "1"
	}

	return cfg
}

func (c Config) IsConfigured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != ""
}

// Mailer sends email over SMTP. It is the delivery transport for digests
// and welcome emails; a send failure is reported to the caller and nothing
// is retried here.
type Mailer struct {
	cfg         Config
	dialTimeout time.Duration
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, dialTimeout: 30 * time.Second}
}

func (m *Mailer) Deliver(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if !m.cfg.IsConfigured() {
		return fmt.Errorf("SMTP is not configured")
	}

	msg := buildMessage(m.cfg.FromName, m.cfg.From, to, subject, textBody, htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if m.cfg.UseTLS {
		return m.sendWithTLS(ctx, addr, auth, to, msg)
	}

	return m.sendWithSTARTTLS(ctx, addr, auth, to, msg)
}

func (m *Mailer) sendWithTLS(ctx context.Context, addr string, auth smtp.Auth, to, msg string) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.dialTimeout},
		Config:    &tls.Config{ServerName: m.cfg.Host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		// Port 587 servers expect STARTTLS instead of implicit TLS.
		return m.sendWithSTARTTLS(ctx, addr, auth, to, msg)
	}
	defer conn.Close()
	conn.SetDeadline(m.transactionDeadline(ctx))

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	return m.transact(client, auth, to, msg)
}

func (m *Mailer) sendWithSTARTTLS(ctx context.Context, addr string, auth smtp.Auth, to, msg string) error {
	dialer := &net.Dialer{Timeout: m.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(m.transactionDeadline(ctx))

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	return m.transact(client, auth, to, msg)
}

// transactionDeadline bounds the whole SMTP exchange, not just the dial: the
// caller's context deadline when one is set, the dial timeout otherwise. A
// server that accepts the connection and then goes silent cannot hold a
// delivery open past it.
func (m *Mailer) transactionDeadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(m.dialTimeout)
}

func (m *Mailer) transact(client *smtp.Client, auth smtp.Auth, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func buildMessage(fromName, from, to, subject, textBody, htmlBody string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))

	if htmlBody == "" {
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(textBody)
		return msg.String()
	}

	boundary := generateBoundary()
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	if textBody != "" {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(textBody))
		msg.WriteString("\r\n")
	}

	// Base64 keeps long HTML lines inside the RFC 5322 998-char limit.
	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String()
}

func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "signalist_boundary_fallback"
	}
	return fmt.Sprintf("signalist_%x", b)
}

// encodeBase64WithLineBreaks wraps base64 output at 76 chars per RFC 2045.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var result strings.Builder
	const lineLen = 76

	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}

	return result.String()
}
