package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Interactive polling chat client:
//
//	poll_chat <nickname> <server-url>
//
// Local commands: /users, /quit. Private messages are not available over
// the polling transport.
const pollInterval = 2 * time.Second

type clientState struct {
	base     string
	id       string
	nickname string
	cursor   int64
	http     *http.Client
}

func main() {
	if err := run(); err != nil {
		log.Printf("poll_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	st := &clientState{
		nickname: "Anonymous",
		base:     "http://localhost:3000",
		id:       uuid.NewString()[:8],
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	if len(args) > 0 {
		st.nickname = args[0]
	}
	if len(args) > 1 {
		st.base = strings.TrimRight(args[1], "/")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	online, err := st.join(ctx)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	fmt.Printf("Joined %s as %s (id %s), %d online\n", st.base, st.nickname, st.id, online)
	fmt.Println("Type to chat. /users lists people, /quit exits.")

	go st.pollLoop(ctx)

	return st.inputLoop(ctx)
}

func (st *clientState) join(ctx context.Context) (int, error) {
	var resp struct {
		Success       bool `json:"success"`
		ClientsOnline int  `json:"clientsOnline"`
	}
	err := st.postJSON(ctx, "/join", map[string]string{
		"id":       st.id,
		"nickname": st.nickname,
	}, &resp)
	return resp.ClientsOnline, err
}

func (st *clientState) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.fetchMessages(ctx); err != nil && ctx.Err() == nil {
				log.Printf("poll: %v", err)
			}
		}
	}
}

func (st *clientState) fetchMessages(ctx context.Context) error {
	q := url.Values{}
	q.Set("since", strconv.FormatInt(st.cursor, 10))
	q.Set("id", st.id)

	var resp struct {
		Messages []struct {
			From      string `json:"from"`
			FromID    string `json:"fromId"`
			Text      string `json:"text"`
			Timestamp int64  `json:"timestamp"`
		} `json:"messages"`
		ClientsOnline int `json:"clientsOnline"`
	}
	if err := st.getJSON(ctx, "/messages?"+q.Encode(), &resp); err != nil {
		return err
	}

	for _, m := range resp.Messages {
		if m.FromID != st.id {
			fmt.Printf("%s: %s\n", m.From, m.Text)
		}
		// Advance the cursor to the newest timestamp seen.
		if m.Timestamp > st.cursor {
			st.cursor = m.Timestamp
		}
	}
	return nil
}

func (st *clientState) inputLoop(ctx context.Context) error {
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
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			switch {
			case text == "/quit":
				return nil
			case text == "/users":
				if err := st.listUsers(ctx); err != nil {
					log.Printf("users: %v", err)
				}
			default:
				if err := st.send(ctx, text); err != nil {
					log.Printf("send: %v", err)
				}
			}
		}
	}
}

func (st *clientState) send(ctx context.Context, text string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	return st.postJSON(ctx, "/send", map[string]string{
		"id":       st.id,
		"nickname": st.nickname,
		"text":     text,
	}, &resp)
}

func (st *clientState) listUsers(ctx context.Context) error {
	var resp struct {
		Clients []struct {
			ID       string `json:"id"`
			Nickname string `json:"nickname"`
		} `json:"clients"`
	}
	if err := st.getJSON(ctx, "/clients", &resp); err != nil {
		return err
	}
	fmt.Println("online:")
	for _, c := range resp.Clients {
		fmt.Printf("  %s (%s)\n", c.Nickname, c.ID)
	}
	return nil
}

func (st *clientState) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, st.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return st.do(req, out)
}

func (st *clientState) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.base+path, nil)
	if err != nil {
		return err
	}
	return st.do(req, out)
}

func (st *clientState) do(req *http.Request, out any) error {
	resp, err := st.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.Unmarshal(data, out)
}
