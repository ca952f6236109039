package core

import (
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Router maps one inbound event plus current registry state to zero or more
// outbound deliveries. It keeps no state of its own; everything lives in the
// registry.
type Router struct {
	reg *Registry
	clk clock.Clock
	log *zerolog.Logger
}

// NewRouter builds a router over the given registry.
func NewRouter(reg *Registry, clk clock.Clock, logger *zerolog.Logger) *Router {
	if clk == nil {
		clk = clock.New()
	}
	return &Router{reg: reg, clk: clk, log: logger}
}

// Dispatch handles one inbound event from senderID. For a join the sender is
// identified by in.ID instead, since the caller has no identity yet.
func (r *Router) Dispatch(senderID string, in Inbound) []Delivery {
	switch in.Kind {
	case InboundJoin:
		return r.join(in)
	case InboundChat:
		return r.chat(senderID, in)
	case InboundPrivate:
		return r.private(senderID, in)
	case InboundListUsers:
		return r.listUsers(senderID)
	case InboundDisconnect:
		return r.disconnect(senderID)
	default:
		r.log.Debug().Str("client_id", senderID).Msg("unknown inbound event")
		return nil
	}
}

// Malformed is the reply to a payload that failed to decode. The connection
// stays open; this is a report, not a rejection.
func (r *Router) Malformed() []Delivery {
	return []Delivery{errorTo(ErrMsgInvalidFormat)}
}

func (r *Router) join(in Inbound) []Delivery {
	nickname := in.Nickname
	if nickname == "" {
		nickname = "Anonymous"
	}

	count := r.reg.Upsert(in.ID, nickname, in.Handle)

	r.log.Info().
		Str("client_id", in.ID).
		Str("nickname", nickname).
		Int("clients_online", count).
		Msg("client joined")

	return []Delivery{
		{
			Scope: ScopeSender,
			Event: Event{
				Kind:          EventJoined,
				ID:            in.ID,
				Nickname:      nickname,
				ClientsOnline: count,
			},
		},
		{
			Scope: ScopeBroadcast,
			Event: Event{
				Kind:          EventUserJoined,
				Nickname:      nickname,
				ClientsOnline: count,
			},
		},
	}
}

func (r *Router) chat(senderID string, in Inbound) []Delivery {
	sender, ok := r.reg.Get(senderID)
	if !ok {
		return []Delivery{errorTo(ErrMsgNotRegistered)}
	}
	r.reg.Touch(senderID)

	r.log.Debug().
		Str("client_id", senderID).
		Str("nickname", sender.Nickname).
		Msg("chat message")

	return []Delivery{
		{
			Scope: ScopeBroadcast,
			Event: Event{
				Kind:      EventChat,
				From:      sender.Nickname,
				FromID:    sender.ID,
				Text:      in.Text,
				Timestamp: r.clk.Now().UnixMilli(),
			},
		},
	}
}

func (r *Router) private(senderID string, in Inbound) []Delivery {
	sender, ok := r.reg.Get(senderID)
	if !ok {
		return []Delivery{errorTo(ErrMsgNotRegistered)}
	}
	r.reg.Touch(senderID)

	recipient, ok := r.reg.Get(in.ToID)
	if !ok || recipient.Handle == nil || !recipient.Handle.Open() {
		return []Delivery{errorTo(ErrMsgRecipientOffline)}
	}

	return []Delivery{
		{
			Scope:    ScopeUnicast,
			TargetID: recipient.ID,
			Event: Event{
				Kind:      EventPrivate,
				From:      sender.Nickname,
				FromID:    sender.ID,
				Text:      in.Text,
				Timestamp: r.clk.Now().UnixMilli(),
			},
		},
		{
			Scope: ScopeSender,
			Event: Event{
				Kind: EventPrivateSent,
				To:   recipient.Nickname,
				Text: in.Text,
			},
		},
	}
}

func (r *Router) listUsers(senderID string) []Delivery {
	if _, ok := r.reg.Get(senderID); !ok {
		return []Delivery{errorTo(ErrMsgNotRegistered)}
	}
	r.reg.Touch(senderID)

	records := r.reg.All()
	users := make([]UserInfo, 0, len(records))
	for _, rec := range records {
		users = append(users, UserInfo{ID: rec.ID, Nickname: rec.Nickname})
	}

	return []Delivery{
		{
			Scope: ScopeSender,
			Event: Event{Kind: EventUserList, Users: users},
		},
	}
}

func (r *Router) disconnect(senderID string) []Delivery {
	rec, ok := r.reg.Remove(senderID)
	if !ok {
		// Double-close or already swept; nothing to announce.
		return nil
	}

	count := r.reg.Count()
	r.log.Info().
		Str("client_id", rec.ID).
		Str("nickname", rec.Nickname).
		Int("clients_online", count).
		Msg("client left")

	return []Delivery{
		{
			Scope: ScopeBroadcast,
			Event: Event{
				Kind:          EventUserLeft,
				Nickname:      rec.Nickname,
				ClientsOnline: count,
			},
		},
	}
}
