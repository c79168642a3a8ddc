package convert

import (
	"context"
	"errors"
	"fmt"
)

// Reason classifies why a conversion failed.
type Reason string

const (
	ReasonUnknown            Reason = "unknown"
	ReasonInvalidOptions     Reason = "invalid-options"
	ReasonMissingInput       Reason = "missing-input"
	ReasonInvalidData        Reason = "invalid-data"
	ReasonEncoderUnavailable Reason = "encoder-unavailable"
	ReasonPermission         Reason = "permission"
	ReasonCanceled           Reason = "canceled"
	ReasonTimeout            Reason = "timeout"
	ReasonIncomplete         Reason = "incomplete"
)

// ErrNoTerminalEvent is reported when an engine closes its event stream
// without an end or error event.
var ErrNoTerminalEvent = errors.New("engine stream closed without a terminal event")

// Classifier is implemented by engine errors that know their failure reason.
type Classifier interface {
	Reason() Reason
}

// ConversionError is the per-file failure returned by ConvertOne. It wraps
// the underlying engine error.
type ConversionError struct {
	InputPath  string
	OutputPath string
	Reason     Reason
	Err        error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s (%s): %v", e.InputPath, e.Reason, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// classify picks the reason for err. Context state wins over the engine's
// own classification because a killed engine reports a generic exit error.
func classify(ctx context.Context, err error) Reason {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrNoTerminalEvent):
		return ReasonIncomplete
	}
	var c Classifier
	if errors.As(err, &c) {
		return c.Reason()
	}
	return ReasonUnknown
}
