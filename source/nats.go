package source

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/pstout/ocelli/types"
)

// NATS implements a membership source over a NATS core subject.
//
// Each message on the subject is decoded into one membership event
// (JSON-encoded types.Event[C] by default). Payloads that fail to decode
// are skipped, logged and reported to the error handler; the subscription
// stays alive.
type NATS[C comparable] struct {
	conn    *nats.Conn
	subject string
	opts    *sourceOptions[C]
}

var _ types.MembershipSource[string] = (*NATS[string])(nil)

// NewNATS creates a NATS-backed membership source.
//
// Parameters:
//   - conn: NATS connection
//   - subject: Subject carrying membership events
//   - opts: Optional decoder, logger and error handler
//
// Returns:
//   - *NATS[C]: Initialized source
//   - error: Validation error for missing connection or subject
//
// Example:
//
//	src, err := source.NewNATS[Host](nc, "cluster.membership")
//	if err != nil { /* handle */ }
//	lb, err := ocelli.New(&cfg, src, byShard, metricsConn)
func NewNATS[C comparable](conn *nats.Conn, subject string, opts ...Option[C]) (*NATS[C], error) {
	if conn == nil {
		return nil, errors.New("NATS connection is required")
	}
	if subject == "" {
		return nil, errors.New("subject is required")
	}

	return &NATS[C]{
		conn:    conn,
		subject: subject,
		opts:    applyOptions(opts),
	}, nil
}

// Subscribe starts delivering decoded membership events to handler.
func (s *NATS[C]) Subscribe(handler func(types.Event[C])) (types.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	sub, err := s.conn.Subscribe(s.subject, func(msg *nats.Msg) {
		ev, err := s.opts.decoder(msg.Data)
		if err != nil {
			s.opts.logger.Warn("failed to decode membership event",
				"subject", s.subject,
				"error", err,
			)
			if s.opts.errHandler != nil {
				s.opts.errHandler(fmt.Errorf("decode membership event: %w", err))
			}

			return
		}

		handler(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}

	return &natsSubscription{sub: sub}, nil
}

// natsSubscription wraps a core NATS subscription.
type natsSubscription struct {
	sub *nats.Subscription
}

// Cancel unsubscribes from the subject. Safe to call multiple times.
func (n *natsSubscription) Cancel() error {
	if !n.sub.IsValid() {
		return nil
	}

	return n.sub.Unsubscribe()
}
