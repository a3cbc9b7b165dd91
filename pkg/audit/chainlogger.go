// Package audit records an append-only, hash-chained trail of sensitive
// operations (logins, transfers, loan decisions). Each entry's hash covers
// the previous entry's hash, so any later edit of the trail breaks
// verification from that point on.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Entry is one committed audit record.
type Entry struct {
	Timestamp    string `json:"timestamp"`
	Actor        string `json:"actor"`
	Action       string `json:"action"`
	Detail       string `json:"detail"`
	PreviousHash string `json:"previous_hash"`
	Hash         string `json:"hash"`
}

// Sink persists entries as they are appended. SaveEntry failures must not
// block the chain; the logger reports them to the caller's error hook.
type Sink interface {
	SaveEntry(e *Entry) error
}

// ChainLogger links entries with SHA-256 hashes. Safe for concurrent use.
type ChainLogger struct {
	mu           sync.Mutex
	previousHash string
	sink         Sink
	onError      func(error)
}

// NewChainLogger starts a fresh chain anchored at the zero hash. sink and
// onError may be nil.
func NewChainLogger(sink Sink, onError func(error)) *ChainLogger {
	return &ChainLogger{
		previousHash: strings.Repeat("0", 64),
		sink:         sink,
		onError:      onError,
	}
}

func entryHash(previousHash, timestamp, actor, action, detail string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s", previousHash, timestamp, actor, action, detail)))
	return hex.EncodeToString(sum[:])
}

// Record appends one entry and hands it to the sink.
func (c *ChainLogger) Record(actor, action, detail string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &Entry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Actor:        actor,
		Action:       action,
		Detail:       detail,
		PreviousHash: c.previousHash,
	}
	e.Hash = entryHash(e.PreviousHash, e.Timestamp, e.Actor, e.Action, e.Detail)
	c.previousHash = e.Hash

	if c.sink != nil {
		if err := c.sink.SaveEntry(e); err != nil && c.onError != nil {
			c.onError(err)
		}
	}
	return e
}

// VerifyChain reports whether entries form an unbroken, unmodified chain.
func VerifyChain(entries []*Entry) bool {
	for i, e := range entries {
		if i > 0 && e.PreviousHash != entries[i-1].Hash {
			return false
		}
		if entryHash(e.PreviousHash, e.Timestamp, e.Actor, e.Action, e.Detail) != e.Hash {
			return false
		}
	}
	return true
}
