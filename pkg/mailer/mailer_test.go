package mailer

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestConfigIsConfigured(t *testing.T) {
	cfg := Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "digest@example.com",
		Password: "secret",
		From:     "digest@example.com",
	}
	assert.Equal(t, true, cfg.IsConfigured())

	cfg.Password = ""
	assert.Equal(t, false, cfg.IsConfigured())
}

func TestBuildMessagePlainText(t *testing.T) {
	msg := buildMessage("Signalist", "news@example.com", "user@example.com", "Hello", "body text", "")

	assert.Equal(t, true, strings.Contains(msg, "From: Signalist <news@example.com>\r\n"))
	assert.Equal(t, true, strings.Contains(msg, "To: user@example.com\r\n"))
	assert.Equal(t, true, strings.Contains(msg, "Subject: Hello\r\n"))
	assert.Equal(t, true, strings.Contains(msg, "Content-Type: text/plain"))
	assert.Equal(t, true, strings.Contains(msg, "body text"))
	assert.Equal(t, false, strings.Contains(msg, "multipart/alternative"))
}

func TestBuildMessageMultipart(t *testing.T) {
	msg := buildMessage("Signalist", "news@example.com", "user@example.com", "Digest", "text part", "<p>html part</p>")

	assert.Equal(t, true, strings.Contains(msg, "MIME-Version: 1.0"))
	assert.Equal(t, true, strings.Contains(msg, "multipart/alternative"))
	assert.Equal(t, true, strings.Contains(msg, "Content-Type: text/html"))
	assert.Equal(t, true, strings.Contains(msg, "Content-Transfer-Encoding: base64"))
	// Body parts are base64 encoded, raw HTML must not leak through.
	assert.Equal(t, false, strings.Contains(msg, "<p>html part</p>"))
}

func TestEncodeBase64WithLineBreaks(t *testing.T) {
	long := strings.Repeat("a", 300)
	encoded := encodeBase64WithLineBreaks(long)

	for _, line := range strings.Split(encoded, "\r\n") {
		if len(line) > 76 {
			t.Errorf("line exceeds 76 chars: %d", len(line))
		}
	}
}

func TestDeliverHonorsContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Equal(t, nil, err)
	defer ln.Close()

	// Accepts connections but never sends the SMTP greeting.
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	m := New(Config{
		Host:     "127.0.0.1",
		Port:     ln.Addr().(*net.TCPAddr).Port,
		Username: "digest@example.com",
		Password: "secret",
		From:     "digest@example.com",
		UseTLS:   false,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.Deliver(ctx, "user@example.com", "Hello", "body", "")

	assert.NotEqual(t, nil, err)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("delivery ignored the context deadline, took %v", elapsed)
	}
}

func TestRenderNewsSummary(t *testing.T) {
	html := RenderNewsSummary("Feb 26, 2026", "Markets were calm today.")

	assert.Equal(t, true, strings.Contains(html, "Feb 26, 2026"))
	assert.Equal(t, true, strings.Contains(html, "Markets were calm today."))
	assert.Equal(t, false, strings.Contains(html, "{{date}}"))
	assert.Equal(t, false, strings.Contains(html, "{{newsContent}}"))
}

func TestRenderWelcome(t *testing.T) {
	html := RenderWelcome("Dana", "Great to have you on board.")

	assert.Equal(t, true, strings.Contains(html, "Welcome, Dana"))
	assert.Equal(t, true, strings.Contains(html, "Great to have you on board."))
	assert.Equal(t, false, strings.Contains(html, "{{name}}"))
	assert.Equal(t, false, strings.Contains(html, "{{intro}}"))
}
