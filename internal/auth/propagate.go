package auth

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/store"
)

// TokenSink receives the current access token.
type TokenSink interface {
	SetAirdropAccessToken(ctx context.Context, token string) error
}

// Propagator sends every new access token to the backend. Only the latest
// pending token is sent; older ones queued behind a slow call are skipped.
type Propagator struct {
	sink    TokenSink
	cred    *store.Value[*model.Credential]
	timeout time.Duration
	log     logrus.FieldLogger

	pending chan string
}

// NewPropagator returns a propagator watching cred.
func NewPropagator(sink TokenSink, cred *store.Value[*model.Credential], timeout time.Duration, log logrus.FieldLogger) *Propagator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Propagator{
		sink:    sink,
		cred:    cred,
		timeout: timeout,
		log:     log.WithField("component", "auth"),
		pending: make(chan string, 1),
	}
}

// Run forwards tokens until ctx is cancelled. The credential held when Run
// starts is forwarded first.
func (p *Propagator) Run(ctx context.Context) error {
	unsubscribe := p.cred.Subscribe(func(c *model.Credential) {
		if c != nil {
			p.offer(c.Token)
		}
	})
	defer unsubscribe()

	if c := p.cred.Get(); c != nil {
		p.offer(c.Token)
	}

	var last string
	for {
		select {
		case <-ctx.Done():
			return nil
		case token := <-p.pending:
			if token == last {
				continue
			}
			last = token
			if err := p.send(ctx, token); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.log.WithError(err).Warn("failed to hand access token to backend")
			}
		}
	}
}

func (p *Propagator) send(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.sink.SetAirdropAccessToken(ctx, token)
}

// offer replaces whatever token is waiting with token. It never blocks.
func (p *Propagator) offer(token string) {
	for {
		select {
		case p.pending <- token:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}
