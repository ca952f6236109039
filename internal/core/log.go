package core

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
)

// Message is one chat utterance retained for polling consumers. Timestamps
// are unix milliseconds, forced strictly increasing so they work as cursors.
type Message struct {
	From      string
	FromID    string
	Text      string
	Timestamp int64
}

// MessageLog is an append-only, bounded, ordered message buffer. Once limit
// is exceeded the oldest entries are discarded.
type MessageLog struct {
	mu     sync.Mutex
	msgs   []Message
	limit  int
	lastTS int64
	clk    clock.Clock
}

// NewMessageLog builds a log retaining at most limit messages.
// A limit of zero or less means unbounded.
func NewMessageLog(limit int, clk clock.Clock) *MessageLog {
	if clk == nil {
		clk = clock.New()
	}
	return &MessageLog{limit: limit, clk: clk}
}

// Append records a message and returns it with its assigned timestamp.
func (l *MessageLog) Append(from, fromID, text string) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.clk.Now().UnixMilli()
	if ts <= l.lastTS {
		ts = l.lastTS + 1
	}
	l.lastTS = ts

	msg := Message{From: from, FromID: fromID, Text: text, Timestamp: ts}
	l.msgs = append(l.msgs, msg)

	if l.limit > 0 && len(l.msgs) > l.limit {
		trimmed := make([]Message, l.limit)
		copy(trimmed, l.msgs[len(l.msgs)-l.limit:])
		l.msgs = trimmed
	}
	return msg
}

// Since returns every retained message with Timestamp > ts, oldest first.
// It never mutates the log, so repeated calls with the same cursor are
// idempotent.
func (l *MessageLog) Since(ts int64) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := sort.Search(len(l.msgs), func(i int) bool {
		return l.msgs[i].Timestamp > ts
	})

	out := make([]Message, len(l.msgs)-i)
	copy(out, l.msgs[i:])
	return out
}

// Len returns the number of retained messages.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}
