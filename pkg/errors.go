// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Sentinel error'lar errors.Is ile, tipli error'lar errors.As ile yakalanır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
//	var na *pkg.NotAllowedError
//	if errors.As(err, &na) && na.RoomID != "" { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")
)

// Reason kodları, NotAllowedError ve InvalidInputError'ın taşıdığı makine-okunur neden.
const (
	ReasonMuted          = "muted"
	ReasonReadOnly       = "read-only"
	ReasonNotAuthorized  = "not-authorized"
	ReasonUnknownEmoji   = "unknown-emoji"
	ReasonInvalidUser    = "invalid-user"
	ReasonInvalidMessage = "invalid-message"
	ReasonInvalidRoom    = "invalid-room"
)

// NotAllowedError, kullanıcının bu işlemi yapmaya yetkisi olmadığını bildirir.
//
// RoomID doluysa boundary katmanı hard failure yerine kullanıcıya
// ephemeral bir mesaj gösterip işlemi sessizce sonlandırabilir.
// Message, kullanıcının diline çevrilmiş açıklamadır.
type NotAllowedError struct {
	Reason  string
	RoomID  string
	Message string
}

func (e *NotAllowedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("not allowed (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("not allowed (%s)", e.Reason)
}

// Unwrap, NotAllowedError'ı ErrForbidden sentinel'ine bağlar, HTTP 403.
func (e *NotAllowedError) Unwrap() error { return ErrForbidden }

// NewNotAllowed, constructor.
func NewNotAllowed(reason, roomID, message string) *NotAllowedError {
	return &NotAllowedError{Reason: reason, RoomID: roomID, Message: message}
}

// InvalidInputError, geçersiz emoji veya bulunamayan id gibi istemci hatalarını temsil eder.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Unwrap, HTTP 400.
func (e *InvalidInputError) Unwrap() error { return ErrBadRequest }

// NewInvalidInput, constructor.
func NewInvalidInput(reason string) *InvalidInputError {
	return &InvalidInputError{Reason: reason}
}

// ReasonOf, error zincirinden reason kodunu çıkarır. Tipli değilse "" döner.
// Metrics label'ı olarak kullanılır.
func ReasonOf(err error) string {
	var na *NotAllowedError
	if errors.As(err, &na) {
		return na.Reason
	}
	var ii *InvalidInputError
	if errors.As(err, &ii) {
		return ii.Reason
	}
	return ""
}
