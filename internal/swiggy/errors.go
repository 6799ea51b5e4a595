package swiggy

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by the errors this package returns.
const (
	TextCodeTransport   = "TRANSPORT_ERROR"
	TextCodeAuthExpired = "AUTH_EXPIRED"
	TextCodeDecode      = "DECODE_ERROR"
)

func apiError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func apiWrapError(source error, category goerrors.Category, message string, code int, textCode string, metadata map[string]any) error {
	if source == nil {
		return apiError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportError(source error, req Request) error {
	return apiWrapError(source, goerrors.CategoryExternal, "request failed", http.StatusBadGateway, TextCodeTransport,
		map[string]any{"path": req.Path, "method": req.method()})
}

func authExpiredError(status int, req Request) error {
	return apiError("session expired or not authorised", goerrors.CategoryAuth, http.StatusUnauthorized, TextCodeAuthExpired,
		map[string]any{"path": req.Path, "status": status})
}

func decodeError(source error, req Request) error {
	return apiWrapError(source, goerrors.CategoryBadInput, "could not decode response", http.StatusUnprocessableEntity, TextCodeDecode,
		map[string]any{"path": req.Path})
}

func httpError(status int, reason string, req Request) error {
	message := fmt.Sprintf("api %s returned status %d", req.Path, status)
	if reason != "" {
		message += ": " + reason
	}
	return apiError(message, goerrors.CategoryOperation, status, fmt.Sprintf("HTTP_%d", status),
		map[string]any{"path": req.Path, "status": status})
}

// IsAuthExpired reports whether err means the stored session no longer works.
func IsAuthExpired(err error) bool {
	return hasTextCode(err, TextCodeAuthExpired)
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	return hasTextCode(err, TextCodeTransport)
}

// IsDecode reports whether err came from an unexpected payload.
func IsDecode(err error) bool {
	return hasTextCode(err, TextCodeDecode) || errors.Is(err, ErrUnrecognizedShape)
}

// StatusCode returns the HTTP status recorded on err, or 0.
func StatusCode(err error) int {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return 0
	}
	if rich.Category != goerrors.CategoryOperation && rich.Category != goerrors.CategoryAuth {
		return 0
	}
	if status, ok := rich.Metadata["status"].(int); ok {
		return status
	}
	return 0
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
