package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ymoraviadev-droid/t-chat/internal/core"
	"github.com/ymoraviadev-droid/t-chat/internal/proto"
)

// PollHandlers implements the request/response polling transport. Clients
// register and send over one-shot requests and pull new messages with a
// since-timestamp cursor; there is no private messaging and no join/leave
// notification over this transport.
type PollHandlers struct {
	reg    *core.Registry
	router *core.Router
	msgs   *core.MessageLog
	log    *zerolog.Logger
}

// NewPollHandlers creates the polling transport over the given core.
func NewPollHandlers(reg *core.Registry, router *core.Router, msgs *core.MessageLog, logger *zerolog.Logger) *PollHandlers {
	return &PollHandlers{reg: reg, router: router, msgs: msgs, log: logger}
}

// JoinRequest is the body of POST /join.
type JoinRequest struct {
	ID       string `json:"id" binding:"required"`
	Nickname string `json:"nickname"`
}

// JoinResponse is the reply to POST /join.
type JoinResponse struct {
	Success       bool `json:"success"`
	ClientsOnline int  `json:"clientsOnline"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	ID       string `json:"id" binding:"required"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

// SendResponse is the reply to POST /send.
type SendResponse struct {
	Success bool `json:"success"`
}

// MessagePayload is one retained message as returned by GET /messages.
type MessagePayload struct {
	From      string `json:"from"`
	FromID    string `json:"fromId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// MessagesResponse is the reply to GET /messages.
type MessagesResponse struct {
	Messages      []MessagePayload `json:"messages"`
	ClientsOnline int              `json:"clientsOnline"`
}

// ClientsResponse is the reply to GET /clients.
type ClientsResponse struct {
	Clients []proto.User `json:"clients"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Join handles POST /join: register or heartbeat.
func (h *PollHandlers) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid join request")
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ds := h.router.Dispatch("", core.Inbound{
		Kind:     core.InboundJoin,
		ID:       req.ID,
		Nickname: req.Nickname,
	})
	h.Fold(req.ID, ds)

	count := h.reg.Count()
	for _, d := range ds {
		if d.Event.Kind == core.EventJoined {
			count = d.Event.ClientsOnline
		}
	}

	c.JSON(stdhttp.StatusOK, JoinResponse{Success: true, ClientsOnline: count})
}

// Send handles POST /send: append one chat message.
func (h *PollHandlers) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send request")
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, ok := h.reg.Get(req.ID); !ok {
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: core.ErrMsgNotRegistered})
		return
	}

	ds := h.router.Dispatch(req.ID, core.Inbound{
		Kind: core.InboundChat,
		Text: req.Text,
	})
	h.Fold(req.ID, ds)

	c.JSON(stdhttp.StatusOK, SendResponse{Success: true})
}

// Messages handles GET /messages?since=<ts>&id=<id>: cursor-based retrieval.
// The id query parameter, when present, doubles as a liveness heartbeat.
func (h *PollHandlers) Messages(c *gin.Context) {
	since, err := strconv.ParseInt(c.Query("since"), 10, 64)
	if err != nil {
		since = 0
	}

	if id := c.Query("id"); id != "" {
		h.reg.Touch(id)
	}

	retained := h.msgs.Since(since)
	messages := make([]MessagePayload, 0, len(retained))
	for _, m := range retained {
		messages = append(messages, MessagePayload{
			From:      m.From,
			FromID:    m.FromID,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}

	c.JSON(stdhttp.StatusOK, MessagesResponse{
		Messages:      messages,
		ClientsOnline: h.reg.Count(),
	})
}

// Clients handles GET /clients: list registered participants.
func (h *PollHandlers) Clients(c *gin.Context) {
	records := h.reg.All()
	clients := make([]proto.User, 0, len(records))
	for _, rec := range records {
		clients = append(clients, proto.User{ID: rec.ID, Nickname: rec.Nickname})
	}
	c.JSON(stdhttp.StatusOK, ClientsResponse{Clients: clients})
}

// Fold consumes router deliveries on behalf of polling clients: chat
// broadcasts land in the retained log, presence broadcasts have no
// subscribers to reach and are discarded.
func (h *PollHandlers) Fold(_ string, ds []core.Delivery) {
	for _, d := range ds {
		if d.Scope == core.ScopeBroadcast && d.Event.Kind == core.EventChat {
			h.msgs.Append(d.Event.From, d.Event.FromID, d.Event.Text)
		}
	}
}
