package handler

import "github.com/rs/zerolog"

// Option configures a handler.
type Option func(*responder)

// WithLogger sets the logger used for internal errors.
func WithLogger(l zerolog.Logger) Option {
	return func(r *responder) { r.logger = l }
}

func newResponder(opts []Option) responder {
	r := responder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
