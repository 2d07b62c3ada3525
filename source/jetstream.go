package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/pstout/ocelli/types"
)

// JetStream implements a membership source over a JetStream stream.
//
// The stream acts as a persistent membership log: each stored message is
// one membership event. Subscribers consume the full log from the start
// via an ordered consumer, so the current population can be reconstructed
// after a restart, then receive live events as they are appended.
type JetStream[C comparable] struct {
	js     jetstream.JetStream
	stream string
	opts   *sourceOptions[C]
}

var _ types.MembershipSource[string] = (*JetStream[string])(nil)

// NewJetStream creates a JetStream-backed membership source.
//
// Parameters:
//   - js: JetStream context (from jetstream.New)
//   - stream: Name of the stream holding the membership log
//   - opts: Optional decoder, logger and error handler
//
// Returns:
//   - *JetStream[C]: Initialized source
//   - error: Validation error for missing context or stream name
func NewJetStream[C comparable](js jetstream.JetStream, stream string, opts ...Option[C]) (*JetStream[C], error) {
	if js == nil {
		return nil, errors.New("JetStream context is required")
	}
	if stream == "" {
		return nil, errors.New("stream name is required")
	}

	return &JetStream[C]{
		js:     js,
		stream: stream,
		opts:   applyOptions(opts),
	}, nil
}

// Subscribe replays the membership log to handler, then delivers live
// events.
//
// Uses an ephemeral ordered consumer starting at the first sequence;
// ordered consumers need no explicit acks and recreate themselves on
// transient gaps.
func (s *JetStream[C]) Subscribe(handler func(types.Event[C])) (types.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	cons, err := s.js.OrderedConsumer(context.Background(), s.stream, jetstream.OrderedConsumerConfig{
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ordered consumer on %s: %w", s.stream, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		ev, err := s.opts.decoder(msg.Data())
		if err != nil {
			s.opts.logger.Warn("failed to decode membership event",
				"stream", s.stream,
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
		return nil, fmt.Errorf("failed to consume stream %s: %w", s.stream, err)
	}

	return &jetStreamSubscription{cc: cc}, nil
}

// jetStreamSubscription wraps an ordered consumer's consume context.
type jetStreamSubscription struct {
	cc jetstream.ConsumeContext
}

// Cancel stops message delivery. Safe to call multiple times.
func (j *jetStreamSubscription) Cancel() error {
	j.cc.Stop()

	return nil
}
