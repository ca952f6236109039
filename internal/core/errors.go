package core

// User-facing error texts carried in error events. The wording is part of
// the wire protocol and mirrored by both transports.
const (
	ErrMsgInvalidFormat    = "Invalid message format"
	ErrMsgNotRegistered    = "Not registered"
	ErrMsgRecipientOffline = "Recipient not found or offline"
)

// errorTo builds the single error delivery every reported failure becomes.
func errorTo(msg string) Delivery {
	return Delivery{
		Scope: ScopeSender,
		Event: Event{Kind: EventError, Message: msg},
	}
}
