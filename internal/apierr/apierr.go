// Package apierr defines the error kinds surfaced across the engine, table
// controller, and command gateway, following the teacher's sentinel-error
// pattern (internal/game/rules.RulesError) but shared by every layer so the
// gateway can map a single taxonomy to HTTP/WS responses.
package apierr

// Kind is a stable error category a caller can branch on.
type Kind string

const (
	KindUnauthenticated     Kind = "Unauthenticated"
	KindForbidden           Kind = "Forbidden"
	KindNotFound            Kind = "NotFound"
	KindInvalidAction       Kind = "InvalidAction"
	KindInvalidAmount       Kind = "InvalidAmount"
	KindInsufficientFunds   Kind = "InsufficientFunds"
	KindTableFull           Kind = "TableFull"
	KindAlreadySeated       Kind = "AlreadySeated"
	KindNotSeated           Kind = "NotSeated"
	KindNotYourTurn         Kind = "NotYourTurn"
	KindGameNotInProgress   Kind = "GameNotInProgress"
	KindGameAlreadyStarted  Kind = "GameAlreadyStarted"
	KindCannotLeaveActive   Kind = "CannotLeaveWhileActive"
	KindAlreadyCashedOut    Kind = "AlreadyCashedOut"
	KindDeckExhausted       Kind = "DeckExhausted"
	KindInsufficientCards   Kind = "InsufficientCards"
	KindBusy                Kind = "Busy"
	KindInternal            Kind = "Internal"
)

// Error is the error type every engine/table/gateway layer returns.
// Validation errors carry no side effects: returning one means no state
// changed.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// New builds an Error with a detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
