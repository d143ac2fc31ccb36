package cerr

import (
	"log/slog"
	"net/http"
)

type Code int

const (
	OK Code = iota
	// Canceled means the run was interrupted before the operation finished.
	Canceled
	// InvalidInput covers unreadable or malformed input files and rows.
	InvalidInput
	// Unauthenticated means the forge rejected our credentials.
	Unauthenticated
	// NotFound means the addressed remote object does not exist.
	NotFound
	// RemoteRejected means the forge refused a mutation (non-2xx response).
	RemoteRejected
	// Internal is everything that should not happen.
	Internal
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Canceled:
		return "canceled"
	case InvalidInput:
		return "invalid_input"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	case RemoteRejected:
		return "remote_rejected"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Level returns the severity used when logging an error with this code.
// Not-found and input problems are expected operational outcomes, not bugs.
func (c Code) Level() slog.Level {
	switch c {
	case OK, Canceled:
		return slog.LevelInfo
	case InvalidInput, NotFound, Unauthenticated:
		return slog.LevelWarn
	case RemoteRejected, Internal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// FromHTTPStatus maps a forge response status to an error code.
func FromHTTPStatus(status int) Code {
	switch {
	case status >= 200 && status < 300:
		return OK
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Unauthenticated
	case status == http.StatusNotFound:
		return NotFound
	case status >= 400 && status < 500:
		return RemoteRejected
	default:
		return RemoteRejected
	}
}
