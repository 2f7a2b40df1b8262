package telegram

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type inputKind int

const (
	awaitQuestion inputKind = iota + 1
	awaitFeedback
)

// pendingInput is what the next plain-text message from a chat means.
type pendingInput struct {
	kind    inputKind
	itemID  string
	expires time.Time
}

// pendingStore remembers, per chat, that the bot asked for free text.
// Entries expire so a forgotten prompt does not capture later messages.
type pendingStore struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func newPendingStore(size int, ttl time.Duration) *pendingStore {
	cache, err := lru.New(size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		cache, _ = lru.New(1024)
	}
	return &pendingStore{cache: cache, ttl: ttl, now: time.Now}
}

func (p *pendingStore) set(chatID int64, kind inputKind, itemID string) {
	p.cache.Add(chatID, pendingInput{kind: kind, itemID: itemID, expires: p.now().Add(p.ttl)})
}

// take returns and clears the chat's pending input.
func (p *pendingStore) take(chatID int64) (pendingInput, bool) {
	v, ok := p.cache.Get(chatID)
	if !ok {
		return pendingInput{}, false
	}
	p.cache.Remove(chatID)
	in := v.(pendingInput)
	if p.now().After(in.expires) {
		return pendingInput{}, false
	}
	return in, true
}

func (p *pendingStore) clear(chatID int64) {
	p.cache.Remove(chatID)
}
