package fault

import (
	"context"
	"errors"
	"fmt"
)

// Kind — класс ошибки. По нему решаем, повторять ли запрос и какой статус отдать.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindNetwork
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

var ErrNotFound = errors.New("not found")

type Error struct {
	Kind Kind
	Op   string
	// Message — текст от внешней стороны (API, провайдер), если он был.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: ErrNotFound}
}

func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func Provider(op, message string, err error) error {
	return &Error{Kind: KindProvider, Op: op, Message: message, Err: err}
}

// KindOf достаёт класс из цепочки ошибок.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnknown
}

// Retryable: not found и ошибки валидации не повторяем, отмену тоже.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch KindOf(err) {
	case KindNotFound, KindValidation:
		return false
	}
	return true
}

// Message возвращает текст для пользователя: сообщение провайдера, если есть.
func Message(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return fallback
}
