package http

import (
	"github.com/ymoraviadev-droid/t-chat/internal/core"
	"github.com/ymoraviadev-droid/t-chat/internal/proto"
)

func inboundToEvent(frame proto.Inbound) core.Inbound {
	switch frame.Type {
	case proto.TypeJoin:
		return core.Inbound{
			Kind:     core.InboundJoin,
			ID:       frame.ID,
			Nickname: frame.Nickname,
		}
	case proto.TypeChat:
		return core.Inbound{
			Kind: core.InboundChat,
			Text: frame.Text,
		}
	case proto.TypePrivate:
		return core.Inbound{
			Kind: core.InboundPrivate,
			ToID: frame.ToID,
			Text: frame.Text,
		}
	case proto.TypeListUsers:
		return core.Inbound{Kind: core.InboundListUsers}
	default:
		return core.Inbound{Kind: core.InboundUnknown}
	}
}

func frameFromEvent(event core.Event) any {
	switch event.Kind {
	case core.EventJoined:
		return proto.Joined{
			Type:          proto.TypeJoined,
			ID:            event.ID,
			Nickname:      event.Nickname,
			ClientsOnline: event.ClientsOnline,
		}
	case core.EventChat:
		return proto.Chat{
			Type:      proto.TypeChat,
			From:      event.From,
			FromID:    event.FromID,
			Text:      event.Text,
			Timestamp: event.Timestamp,
		}
	case core.EventPrivate:
		return proto.Chat{
			Type:      proto.TypePrivate,
			From:      event.From,
			FromID:    event.FromID,
			Text:      event.Text,
			Timestamp: event.Timestamp,
		}
	case core.EventPrivateSent:
		return proto.PrivateSent{
			Type: proto.TypePrivateSent,
			To:   event.To,
			Text: event.Text,
		}
	case core.EventUserJoined:
		return proto.Presence{
			Type:          proto.TypeUserJoined,
			Nickname:      event.Nickname,
			ClientsOnline: event.ClientsOnline,
		}
	case core.EventUserLeft:
		return proto.Presence{
			Type:          proto.TypeUserLeft,
			Nickname:      event.Nickname,
			ClientsOnline: event.ClientsOnline,
		}
	case core.EventUserList:
		users := make([]proto.User, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.User{ID: u.ID, Nickname: u.Nickname})
		}
		return proto.UserList{Type: proto.TypeUserList, Users: users}
	case core.EventError:
		return proto.Error{Type: proto.TypeError, Message: event.Message}
	default:
		return proto.Error{Type: proto.TypeError, Message: "unknown event"}
	}
}
