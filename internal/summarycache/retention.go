package summarycache

import (
	"log"
	"sync"
	"time"
)

// RetentionConfig holds configuration for the retention cleaner.
type RetentionConfig struct {
	Interval time.Duration
}

// RetentionCleaner periodically deletes cache entries whose TTL has passed.
type RetentionCleaner struct {
	store    *Store
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	tickWg   sync.WaitGroup
	stopOnce sync.Once
}

// NewRetentionCleaner creates a cleaner that prunes expired entries.
// Returns nil when the interval is negative (disabled); zero means the
// default of one hour.
func NewRetentionCleaner(store *Store, conf ...RetentionConfig) *RetentionCleaner {
	interval := 1 * time.Hour
	if len(conf) > 0 {
		if conf[0].Interval < 0 {
			return nil
		}
		if conf[0].Interval > 0 {
			interval = conf[0].Interval
		}
	}

	rc := &RetentionCleaner{
		store:    store,
		interval: interval,
		done:     make(chan struct{}),
	}

	// Startup sweep to catch up after downtime.
	rc.cleanup()

	rc.wg.Add(1)
	rc.tickWg.Add(1)
	go rc.tickLoop()

	return rc
}

func (rc *RetentionCleaner) tickLoop() {
	defer rc.wg.Done()
	defer rc.tickWg.Done()
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.cleanup()
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) cleanup() {
	rows, err := rc.store.DeleteExpired()
	if err != nil {
		log.Printf("summarycache: retention cleanup error: %v", err)
		return
	}
	if rows > 0 {
		log.Printf("summarycache: retention cleanup deleted %d expired summaries", rows)
	}
}

// Stop signals the cleaner to stop and waits for it to finish.
func (rc *RetentionCleaner) Stop() {
	rc.stopOnce.Do(func() {
		close(rc.done)
		rc.tickWg.Wait()
		rc.wg.Wait()
	})
}
