package source

import (
	"encoding/json"

	"github.com/pstout/ocelli/internal/logger"
	"github.com/pstout/ocelli/types"
)

// Decoder converts a raw message payload into a membership event.
type Decoder[C comparable] func(data []byte) (types.Event[C], error)

// JSONDecoder returns the default decoder: the payload is a JSON-encoded
// types.Event[C].
func JSONDecoder[C comparable]() Decoder[C] {
	return func(data []byte) (types.Event[C], error) {
		var ev types.Event[C]
		err := json.Unmarshal(data, &ev)

		return ev, err
	}
}

// Option configures a NATS or JetStream source.
type Option[C comparable] func(*sourceOptions[C])

// sourceOptions holds optional source configuration.
type sourceOptions[C comparable] struct {
	decoder    Decoder[C]
	logger     types.Logger
	errHandler func(error)
}

func applyOptions[C comparable](opts []Option[C]) *sourceOptions[C] {
	o := &sourceOptions[C]{}
	for _, opt := range opts {
		opt(o)
	}
	if o.decoder == nil {
		o.decoder = JSONDecoder[C]()
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}

	return o
}

// WithDecoder sets a custom payload decoder (default: JSON).
func WithDecoder[C comparable](d Decoder[C]) Option[C] {
	return func(o *sourceOptions[C]) {
		o.decoder = d
	}
}

// WithLogger sets a logger for decode and transport errors (default: no-op).
func WithLogger[C comparable](l types.Logger) Option[C] {
	return func(o *sourceOptions[C]) {
		o.logger = l
	}
}

// WithErrorHandler sets a callback invoked for payloads that fail to
// decode and for abnormal source termination. Faulty payloads are skipped
// either way; the subscription stays alive.
func WithErrorHandler[C comparable](fn func(error)) Option[C] {
	return func(o *sourceOptions[C]) {
		o.errHandler = fn
	}
}
