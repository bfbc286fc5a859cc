package smtp

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// startPlainServer поднимает SMTP-сервер, который не объявляет STARTTLS.
func startPlainServer(t *testing.T) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = conn.Write([]byte("220 localhost ESMTP\r\n"))
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_, _ = conn.Write([]byte("250-localhost\r\n250 AUTH PLAIN\r\n"))
			case strings.HasPrefix(line, "QUIT"):
				_, _ = conn.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = conn.Write([]byte("250 ok\r\n"))
			}
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestTransport_Dial_RequiresStartTLS(t *testing.T) {
	host, port := startPlainServer(t)
	tr := NewTransport(config.SMTP{Host: host, Port: port, User: "mailer", StartTLS: true}, newNoopLogger())

	client, err := tr.Dial(context.Background())
	require.ErrorIs(t, err, ErrNoStartTLS)
	assert.Nil(t, client)
}

func TestTransport_Dial_PlainWithoutAuth(t *testing.T) {
	host, port := startPlainServer(t)
	tr := NewTransport(config.SMTP{Host: host, Port: port}, newNoopLogger())

	client, err := tr.Dial(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.Mail("noreply@example.com"))
	assert.NoError(t, client.Quit())
}

func TestTransport_Dial_Refused(t *testing.T) {
	tr := NewTransport(config.SMTP{Host: "127.0.0.1", Port: "1"}, newNoopLogger())

	client, err := tr.Dial(context.Background())
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestTransport_Addresses(t *testing.T) {
	tr := NewTransport(config.SMTP{User: "login@example.com"}, newNoopLogger())
	assert.Equal(t, "login@example.com", tr.HeaderFrom())
	assert.Equal(t, "login@example.com", tr.EnvelopeFrom())

	tr = NewTransport(config.SMTP{User: "login@example.com", From: "noreply@example.com"}, newNoopLogger())
	assert.Equal(t, "noreply@example.com", tr.HeaderFrom())
	assert.Equal(t, "login@example.com", tr.EnvelopeFrom())

	tr = NewTransport(config.SMTP{From: "noreply@example.com"}, newNoopLogger())
	assert.Equal(t, "noreply@example.com", tr.EnvelopeFrom())
}
