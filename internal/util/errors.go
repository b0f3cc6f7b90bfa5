package util

import (
	"fmt"
	"log/slog"
	"runtime"
)

// CatalogoError adds structured context and a capture-site stack trace to an
// error. Ingestion, config and CLI code wrap with this so LogError can emit
// consistent structured log lines regardless of where an error originated.
type CatalogoError struct {
	OriginalErr error
	Message     string
	Stack       string
	Attrs       []slog.Attr
}

func (e *CatalogoError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

func (e *CatalogoError) Unwrap() error {
	return e.OriginalErr
}

const maxStackLength = 8192

// NewError creates a CatalogoError without an underlying cause.
func NewError(message string, attrs ...slog.Attr) *CatalogoError {
	return newCatalogoError(nil, message, attrs...)
}

// WrapError creates a CatalogoError wrapping an existing error.
func WrapError(err error, message string, attrs ...slog.Attr) *CatalogoError {
	return newCatalogoError(err, message, attrs...)
}

func newCatalogoError(originalErr error, message string, attrs ...slog.Attr) *CatalogoError {
	buf := make([]byte, maxStackLength)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	if ce, ok := originalErr.(*CatalogoError); ok {
		combinedAttrs := append(append([]slog.Attr{}, ce.Attrs...), attrs...)
		newMessage := message
		if ce.Message != "" {
			newMessage = fmt.Sprintf("%s: %s", message, ce.Message)
		}
		return &CatalogoError{
			OriginalErr: ce.OriginalErr,
			Message:     newMessage,
			Stack:       ce.Stack,
			Attrs:       combinedAttrs,
		}
	}

	return &CatalogoError{
		OriginalErr: originalErr,
		Message:     message,
		Stack:       stack,
		Attrs:       attrs,
	}
}

// LogError logs a CatalogoError with its structured context and stack
// trace. Non-CatalogoError values are logged as a plain error message.
func LogError(logger *slog.Logger, err error) {
	if err == nil {
		return
	}

	var ce *CatalogoError
	if asCe, ok := err.(*CatalogoError); ok {
		ce = asCe
	} else if asWrapper, ok := err.(interface{ Unwrap() error }); ok {
		if unwrapCe, ok := asWrapper.Unwrap().(*CatalogoError); ok {
			ce = unwrapCe
		}
	}

	if ce != nil {
		logAttrs := []any{slog.String("error_message", ce.Message)}
		if ce.OriginalErr != nil {
			logAttrs = append(logAttrs, slog.String("original_error", ce.OriginalErr.Error()))
		}
		logAttrs = append(logAttrs, slog.String("stack_trace", ce.Stack))
		for _, attr := range ce.Attrs {
			logAttrs = append(logAttrs, attr)
		}
		logger.Error("An error occurred", logAttrs...)
		return
	}
	logger.Error("An error occurred", slog.String("error", err.Error()))
}
