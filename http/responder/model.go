package responder

// Response is the envelope of every JSON response.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
	Meta  Meta   `json:"meta"`
}

// Error is the error part of a Response.
type Error struct {
	Type    string         `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta represents metadata in API responses
type Meta struct {
	RequestID string `json:"requestId,omitempty"`
	// Took is the handling time in milliseconds.
	Took int64 `json:"took,omitempty"`
}

type Option func(*Meta)

func WithRequestID(id string) Option {
	return func(m *Meta) {
		m.RequestID = id
	}
}

func WithTook(ms int64) Option {
	return func(m *Meta) {
		m.Took = ms
	}
}

func NewMeta(opts ...Option) *Meta {
	meta := Meta{}
	for _, opt := range opts {
		opt(&meta)
	}
	return &meta
}
