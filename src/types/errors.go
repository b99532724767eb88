package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories for the payment pipeline. Handlers map these to HTTP
// status codes with ErrorStatus; everything else is a 500.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s [%v] not found", e.Resource, e.ID)
}

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

type GatewayError struct {
	Code    string
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s] status=%d: %s", e.Code, e.Status, e.Message)
}

// Retryable reports whether a reconciliation loop may poll again. Client
// errors from the gateway are final; server and transport failures are not.
func (e *GatewayError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

type SecurityError struct {
	Reason string
}

func (e *SecurityError) Error() string {
	return e.Reason
}

func ErrorStatus(err error) int {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	var ge *GatewayError
	var se *SecurityError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ge):
		return http.StatusBadGateway
	case errors.As(err, &se):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
