package events

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Listener keeps a websocket open to the backend's event endpoint and
// publishes every envelope it reads into a Hub.
type Listener struct {
	url    string
	header http.Header
	hub    *Hub
	dialer *websocket.Dialer
	log    logrus.FieldLogger

	// wait is swapped in tests to avoid real backoff sleeps.
	wait func(ctx context.Context, d time.Duration) error
}

// NewListener builds a listener for baseURL+path. http(s) schemes are
// mapped to ws(s).
func NewListener(baseURL, path string, header http.Header, hub *Hub, log logrus.FieldLogger) (*Listener, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("events url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("events url: unsupported scheme %q", u.Scheme)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listener{
		url:    u.String(),
		header: header,
		hub:    hub,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		log:    log.WithField("component", "events"),
		wait:   sleepCtx,
	}, nil
}

// URL returns the websocket URL the listener dials.
func (l *Listener) URL() string {
	return l.url
}

// Run connects and reads until ctx is cancelled, reconnecting with
// exponential backoff after every failure. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	fails := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, _, err := l.dialer.DialContext(ctx, l.url, l.header)
		if err == nil {
			fails = 0
			l.log.Debug("event channel connected")
			err = l.read(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}

		fails++
		d := Backoff(fails)
		l.log.WithError(err).Warnf("event channel lost, reconnecting in %v", d)
		if werr := l.wait(ctx, d); werr != nil {
			return nil
		}
	}
}

func (l *Listener) read(ctx context.Context, conn *websocket.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			return err
		}
		if e.Name == "" {
			l.log.Warn("discarding event without a name")
			continue
		}
		l.hub.Publish(e)
	}
}

// Backoff returns the reconnect delay after fails consecutive failures:
// 1s, 2s, 4s, ... capped at 60s.
func Backoff(fails int) time.Duration {
	const maxBackoff = 60 * time.Second
	if fails <= 1 {
		return time.Second
	}
	if fails > 6 {
		return maxBackoff
	}
	d := time.Duration(1<<(fails-1)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
