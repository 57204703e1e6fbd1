package api

import "errors"

// ErrorKind classifica as falhas da fronteira remota em tipos acionáveis,
// no lugar de pattern-matching de mensagens
type ErrorKind string

const (
	KindTransport         ErrorKind = "transport"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindDuplicateUTR      ErrorKind = "duplicate_utr"
	KindEmailExists       ErrorKind = "email_exists"
	KindUserNotFound      ErrorKind = "user_not_found"
	KindPasswordIncorrect ErrorKind = "password_incorrect"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation"
	KindServer            ErrorKind = "server"
)

// Error é o erro tipado devolvido por todas as chamadas do cliente
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf extrai o tipo do erro; erros não tipados contam como transporte
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransport
}

// IsKind informa se o erro carrega o tipo dado
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// mapError converte status HTTP + código de erro do corpo em erro tipado
func mapError(status int, code string) *Error {
	kind := KindServer
	switch {
	case code == "duplicate_utr":
		kind = KindDuplicateUTR
	case code == "email_exists":
		kind = KindEmailExists
	case code == "user_not_found":
		kind = KindUserNotFound
	case code == "password_incorrect":
		kind = KindPasswordIncorrect
	case code == "insufficient_funds":
		kind = KindInsufficientFunds
	case status == 401:
		kind = KindUnauthorized
	case status == 403:
		kind = KindForbidden
	case status == 404:
		kind = KindNotFound
	case status == 400:
		kind = KindValidation
	}
	msg := code
	if msg == "" {
		msg = "request failed"
	}
	return &Error{Kind: kind, Message: msg}
}
