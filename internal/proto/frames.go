package proto

// Frame type tags for the WebSocket transport.
const (
	TypeJoin      = "join"
	TypeChat      = "chat"
	TypePrivate   = "private"
	TypeListUsers = "list_users"

	TypeJoined      = "joined"
	TypePrivateSent = "private_sent"
	TypeUserJoined  = "user_joined"
	TypeUserLeft    = "user_left"
	TypeUserList    = "user_list"
	TypeError       = "error"
)

// Inbound is the flat envelope for frames coming from the client. Which
// fields are meaningful depends on Type.
type Inbound struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Text     string `json:"text,omitempty"`
	ToID     string `json:"toId,omitempty"`
}

// Joined confirms a join to the sender.
type Joined struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	ClientsOnline int    `json:"clientsOnline"`
}

// Chat carries a chat or private message. Type distinguishes the two.
type Chat struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	FromID    string `json:"fromId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// PrivateSent confirms a private delivery to its sender.
type PrivateSent struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Presence announces a join or leave to the other participants.
type Presence struct {
	Type          string `json:"type"`
	Nickname      string `json:"nickname"`
	ClientsOnline int    `json:"clientsOnline"`
}

// User is one entry of a user list.
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// UserList answers a list_users request.
type UserList struct {
	Type  string `json:"type"`
	Users []User `json:"users"`
}

// Error reports a failure to the sender only.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
