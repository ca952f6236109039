package core

// InboundKind describes what a client wants to do.
type InboundKind int

const (
	// InboundJoin registers (or re-registers) the sender.
	InboundJoin InboundKind = iota
	// InboundChat broadcasts a text message to everyone else.
	InboundChat
	// InboundPrivate sends a text message to a single recipient.
	InboundPrivate
	// InboundListUsers asks for the current online user list.
	InboundListUsers
	// InboundDisconnect removes the sender, from an explicit command,
	// a transport-level close, or a sweeper timeout.
	InboundDisconnect
	// InboundUnknown is any type the transport could not recognize.
	InboundUnknown
)

// Inbound is the transport-agnostic shape of one client request.
type Inbound struct {
	Kind     InboundKind
	ID       string
	Nickname string
	Text     string
	ToID     string
	Handle   Handle // set by push transports on join, nil otherwise
}

// EventKind is a notification the router emits toward clients.
type EventKind int

const (
	// EventJoined confirms a join to the sender.
	EventJoined EventKind = iota
	// EventChat carries a broadcast chat message.
	EventChat
	// EventPrivate carries a direct message to one recipient.
	EventPrivate
	// EventPrivateSent confirms a private delivery to its sender.
	EventPrivateSent
	// EventUserJoined announces a new participant to everyone else.
	EventUserJoined
	// EventUserLeft announces a departure to the remaining participants.
	EventUserLeft
	// EventUserList answers a list_users request.
	EventUserList
	// EventError reports a failure to the sender only.
	EventError
)

// UserInfo is one entry of a user list.
type UserInfo struct {
	ID       string
	Nickname string
}

// Event describes what happened; only the fields relevant to Kind are set.
type Event struct {
	Kind          EventKind
	ID            string
	Nickname      string
	ClientsOnline int
	From          string
	FromID        string
	To            string
	Text          string
	Timestamp     int64 // unix milliseconds
	Users         []UserInfo
	Message       string // error text
}

// Scope says who receives a delivery.
type Scope int

const (
	// ScopeSender targets the client that caused the dispatch, even when
	// it is not (or no longer) registered.
	ScopeSender Scope = iota
	// ScopeBroadcast targets every registered client except the sender.
	ScopeBroadcast
	// ScopeUnicast targets the single client named by TargetID.
	ScopeUnicast
)

// Delivery is one outbound event plus its audience. The transport adapter
// decides how (and whether) each delivery physically reaches a client.
type Delivery struct {
	Scope    Scope
	TargetID string
	Event    Event
}
