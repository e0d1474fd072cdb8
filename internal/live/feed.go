package live

import (
	"strings"
	"sync"
	"time"

	"github.com/harpiadesk/harpia/internal/protocol"
)

// FeedCapacity is the number of activity entries kept.
const FeedCapacity = 50

// FeedItem is one entry of the activity feed.
type FeedItem struct {
	Message string
	Type    string
	At      time.Time
}

// Class returns the style class of the entry, e.g. "type-channel-follow".
func (i FeedItem) Class() string {
	return "type-" + strings.NewReplacer(".", "-", "_", "-").Replace(i.Type)
}

// Feed is a bounded activity list, newest first.
type Feed struct {
	mu    sync.Mutex
	items []FeedItem
	now   Clock
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

// Add prepends an activity, dropping the oldest entry beyond capacity.
func (f *Feed) Add(a protocol.Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := FeedItem{Message: a.Message, Type: a.Type, At: f.now()}
	f.items = append([]FeedItem{item}, f.items...)
	if len(f.items) > FeedCapacity {
		f.items = f.items[:FeedCapacity]
	}
}

// Items returns the entries, newest first.
func (f *Feed) Items() []FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedItem(nil), f.items...)
}

// Len returns the number of entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
