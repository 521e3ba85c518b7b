package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is an open duplex channel.
type Conn interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens duplex channels.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials channels with gorilla/websocket.
type WebSocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebSocketDialer creates a dialer with the given handshake timeout.
func NewWebSocketDialer(handshakeTimeout time.Duration) *WebSocketDialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &WebSocketDialer{dialer: &d}
}

// WithTLS sets the TLS config for wss servers. Nil keeps Go's defaults.
func (d *WebSocketDialer) WithTLS(cfg *tls.Config) *WebSocketDialer {
	d.dialer.TLSClientConfig = cfg
	return d
}

// Dial opens a channel to url.
func (d *WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// isCleanClose reports whether err is an orderly close by the peer.
func isCleanClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// closeMessageType is the frame type of closeMessage.
const closeMessageType = websocket.CloseMessage

// closeMessage is sent before closing a channel on Disconnect.
func closeMessage() []byte {
	return websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
}

// channelURL derives the channel URL from the server base URL.
func channelURL(server, path string) (string, error) {
	base := server
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.New("unsupported scheme: " + u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}
