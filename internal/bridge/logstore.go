package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/unityctl/bridge/pkg/broadcast"
)

// LogEntry is one console line forwarded by the editor peer.
type LogEntry struct {
	Sequence   int64     `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	StackTrace string    `json:"stackTrace,omitempty"`
}

// LogStore is a bounded ring buffer of recent log entries paired with a
// multi-subscriber, drop-oldest broadcast feed for live tailing. Clearing
// the log never discards history: it just raises a watermark below which
// Recent omits entries by default.
type LogStore struct {
	mu             sync.Mutex
	capacity       int
	entries        []LogEntry
	nextSeq        int64
	clearWatermark int64
	clearedAt      time.Time
	clearReason    string

	broadcaster *broadcast.MemoryBroadcaster[LogEntry]
}

// NewLogStore builds a store holding up to capacity entries, whose live
// subscribers each buffer up to subscriptionBuffer undelivered entries
// before the store starts dropping for that subscriber.
func NewLogStore(capacity, subscriptionBuffer int) *LogStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogStore{
		capacity:    capacity,
		broadcaster: broadcast.NewMemoryBroadcaster[LogEntry](subscriptionBuffer, broadcast.WithDropOldest()),
	}
}

// Ingest assigns the next sequence number to e, appends it to the ring
// buffer (evicting the oldest entry past capacity), and broadcasts it to
// live subscribers. Sequence allocation and broadcast happen under the same
// lock so subscribers always observe entries in sequence order.
func (s *LogStore) Ingest(ctx context.Context, e LogEntry) LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Sequence = s.nextSeq
	s.nextSeq++

	s.entries = append(s.entries, e)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}

	_ = s.broadcaster.Broadcast(ctx, broadcast.Message[LogEntry]{Data: e})
	return e
}

// Recent returns up to count entries (0 means unbounded), optionally
// filtered by source, oldest first. Entries below the clear watermark are
// omitted unless includeCleared is set.
func (s *LogStore) Recent(count int, source string, includeCleared bool) []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if source != "" && source != "all" && e.Source != source {
			continue
		}
		if !includeCleared && e.Sequence < s.clearWatermark {
			continue
		}
		filtered = append(filtered, e)
	}

	if count > 0 && len(filtered) > count {
		filtered = filtered[len(filtered)-count:]
	}
	return filtered
}

// Clear raises the watermark to the next sequence number that will be
// assigned, so every entry ingested before this call is hidden from
// subsequent default-mode Recent calls without being physically deleted.
func (s *LogStore) Clear(reason string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearWatermark = s.nextSeq
	s.clearedAt = time.Now()
	s.clearReason = reason
	return s.clearWatermark
}

// Subscribe opens a live feed of future log entries. The feed closes when
// ctx is done.
func (s *LogStore) Subscribe(ctx context.Context) broadcast.Subscriber[LogEntry] {
	return s.broadcaster.Subscribe(ctx)
}
