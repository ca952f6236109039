package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/ymoraviadev-droid/t-chat/internal/proto"
)

// Interactive WebSocket chat client:
//
//	ws_chat <nickname> <server-url>
//
// Local commands: /users, /pm <id> <text>, /quit.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	nickname := "Anonymous"
	addr := "ws://localhost:3000/ws"
	if len(args) > 0 {
		nickname = args[0]
	}
	if len(args) > 1 {
		addr = args[1]
	}

	id := uuid.NewString()[:8]

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(frame proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, frame); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.Inbound{Type: proto.TypeJoin, ID: id, Nickname: nickname})

	fmt.Printf("Connected to %s as %s (id %s)\n", addr, nickname, id)
	fmt.Println("Type to chat. /users lists people, /pm <id> <text> whispers, /quit exits.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame map[string]json.RawMessage
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		printFrame(frame)
	}
}

func printFrame(frame map[string]json.RawMessage) {
	var frameType string
	_ = json.Unmarshal(frame["type"], &frameType)

	str := func(key string) string {
		var s string
		_ = json.Unmarshal(frame[key], &s)
		return s
	}
	num := func(key string) int {
		var n int
		_ = json.Unmarshal(frame[key], &n)
		return n
	}

	switch frameType {
	case proto.TypeJoined:
		fmt.Printf("joined as %s, %d online\n", str("nickname"), num("clientsOnline"))
	case proto.TypeChat:
		fmt.Printf("%s: %s\n", str("from"), str("text"))
	case proto.TypePrivate:
		fmt.Printf("[pm from %s (%s)] %s\n", str("from"), str("fromId"), str("text"))
	case proto.TypePrivateSent:
		fmt.Printf("[pm to %s] %s\n", str("to"), str("text"))
	case proto.TypeUserJoined:
		fmt.Printf("* %s joined, %d online\n", str("nickname"), num("clientsOnline"))
	case proto.TypeUserLeft:
		fmt.Printf("* %s left, %d online\n", str("nickname"), num("clientsOnline"))
	case proto.TypeUserList:
		var users []proto.User
		_ = json.Unmarshal(frame["users"], &users)
		fmt.Println("online:")
		for _, u := range users {
			fmt.Printf("  %s (%s)\n", u.Nickname, u.ID)
		}
	case proto.TypeError:
		fmt.Printf("error: %s\n", str("message"))
	default:
		fmt.Printf("unknown frame type %q\n", frameType)
	}
}

func writeLoop(ctx context.Context, send func(proto.Inbound)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			switch {
			case text == "/quit":
				return
			case text == "/users":
				send(proto.Inbound{Type: proto.TypeListUsers})
			case strings.HasPrefix(text, "/pm "):
				parts := strings.SplitN(text, " ", 3)
				if len(parts) < 3 {
					fmt.Println("usage: /pm <id> <text>")
					continue
				}
				send(proto.Inbound{Type: proto.TypePrivate, ToID: parts[1], Text: parts[2]})
			default:
				send(proto.Inbound{Type: proto.TypeChat, Text: text})
			}
		}
	}
}
