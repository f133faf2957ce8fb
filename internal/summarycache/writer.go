package summarycache

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultFlushQueueSize is the number of batches that can be queued for async flushing.
const DefaultFlushQueueSize = 32

// entryWriter is the subset of Store the buffer needs; tests substitute it.
type entryWriter interface {
	InsertBatch(entries []*Entry) error
}

// WriteBuffer batches cache entries and flushes them to DuckDB asynchronously.
// Put() never blocks on DuckDB writes, so caching a summary stays off the
// request path.
type WriteBuffer struct {
	writer        entryWriter
	ttl           time.Duration
	mu            sync.Mutex
	pending       []*Entry
	flushChan     chan []*Entry
	maxBatch      int
	flushInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
	tickWg        sync.WaitGroup
	stopOnce      sync.Once

	// backpressureCount tracks inline flushes for throttled logging.
	backpressureCount atomic.Int64
	lastBPLog         atomic.Int64 // unix timestamp of last backpressure log
}

// WriteBufferConfig holds tunable parameters for the write buffer.
type WriteBufferConfig struct {
	BatchSize      int
	FlushInterval  time.Duration
	FlushQueueSize int
	TTL            time.Duration
}

// NewWriteBuffer creates a write buffer that flushes to the store.
// The flush goroutine processes batches asynchronously so Put() never blocks on IO.
func NewWriteBuffer(writer entryWriter, conf ...WriteBufferConfig) *WriteBuffer {
	batchSize := 64
	flushInterval := 250 * time.Millisecond
	flushQueueSize := DefaultFlushQueueSize
	ttl := 15 * time.Minute
	if len(conf) > 0 {
		if conf[0].BatchSize > 0 {
			batchSize = conf[0].BatchSize
		}
		if conf[0].FlushInterval > 0 {
			flushInterval = conf[0].FlushInterval
		}
		if conf[0].FlushQueueSize > 0 {
			flushQueueSize = conf[0].FlushQueueSize
		}
		if conf[0].TTL > 0 {
			ttl = conf[0].TTL
		}
	}

	b := &WriteBuffer{
		writer:        writer,
		ttl:           ttl,
		pending:       make([]*Entry, 0, batchSize),
		flushChan:     make(chan []*Entry, flushQueueSize),
		maxBatch:      batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}

	b.wg.Add(1)
	go b.flushWorker()

	b.wg.Add(1)
	b.tickWg.Add(1)
	go b.tickLoop()

	return b
}

// tickLoop periodically drains the pending buffer.
func (b *WriteBuffer) tickLoop() {
	defer b.wg.Done()
	defer b.tickWg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.drainPending()
		case <-b.done:
			b.drainPending() // final drain
			return
		}
	}
}

// logBackpressure emits a throttled warning (at most once per 10 seconds) when
// the flush channel is full and an inline flush is triggered.
func (b *WriteBuffer) logBackpressure() {
	count := b.backpressureCount.Add(1)
	now := time.Now().Unix()
	last := b.lastBPLog.Load()
	if now-last >= 10 && b.lastBPLog.CompareAndSwap(last, now) {
		log.Printf("summarycache: backpressure, %d inline flushes (flush channel full, cache falling behind)", count)
	}
}

// drainPending moves pending entries to the flush channel without blocking on DuckDB.
func (b *WriteBuffer) drainPending() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make([]*Entry, 0, b.maxBatch)
	b.mu.Unlock()

	// Non-blocking send to flush channel. If the channel is full, flush
	// synchronously as a safety valve.
	select {
	case b.flushChan <- batch:
	default:
		b.logBackpressure()
		if err := b.writer.InsertBatch(batch); err != nil {
			log.Printf("summarycache flush error (inline): %v", err)
		}
	}
}

// flushWorker processes batches from the flush channel.
func (b *WriteBuffer) flushWorker() {
	defer b.wg.Done()
	for batch := range b.flushChan {
		if err := b.writer.InsertBatch(batch); err != nil {
			log.Printf("summarycache flush error: %v", err)
		}
	}
}

// Put queues a computed summary for caching. Missing bookkeeping fields are
// stamped here so callers only fill Fingerprint, Kind and Payload.
func (b *WriteBuffer) Put(entry *Entry) {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = now.Add(b.ttl)
	}

	b.mu.Lock()
	b.pending = append(b.pending, entry)
	shouldFlush := len(b.pending) >= b.maxBatch
	var batch []*Entry
	if shouldFlush {
		batch = b.pending
		b.pending = make([]*Entry, 0, b.maxBatch)
	}
	b.mu.Unlock()

	if shouldFlush {
		select {
		case b.flushChan <- batch:
		default:
			// Backpressure safety valve: flush inline instead of spawning
			// unbounded goroutines under sustained overload.
			b.logBackpressure()
			if err := b.writer.InsertBatch(batch); err != nil {
				log.Printf("summarycache flush error (overflow-inline): %v", err)
			}
		}
	}
}

// Stop flushes remaining entries and waits for all writes to complete.
func (b *WriteBuffer) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		// Wait for tickLoop to finish its final drain before closing flushChan,
		// ensuring all pending entries reach the flush channel.
		b.tickWg.Wait()
		close(b.flushChan)
		b.wg.Wait()
	})
}
