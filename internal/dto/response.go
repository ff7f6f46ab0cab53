package dto

import "github.com/SscSPs/mfg_ledger/internal/apperrors"

// Envelope is the shape of every API response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// OK wraps data in a successful envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds an error envelope from err.
func Fail(err error) Envelope {
	return Envelope{Error: &ErrorBody{Kind: apperrors.KindOf(err), Message: apperrors.Message(err)}}
}

// FailWith builds an error envelope with an explicit kind and message.
func FailWith(kind apperrors.Kind, msg string) Envelope {
	return Envelope{Error: &ErrorBody{Kind: kind, Message: msg}}
}
