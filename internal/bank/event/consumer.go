package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
)

// Auditor records a completed transfer somewhere durable enough for audit
// purposes. Implementations must tolerate redelivery of the same event.
type Auditor interface {
	Audit(ctx context.Context, event entity.TransferEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// AuditConsumer drains the transfer event bus with a worker pool, deduping
// by event ID and retrying the auditor with exponential backoff.
type AuditConsumer struct {
	bus         *Bus
	auditor     Auditor
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewAuditConsumer(bus *Bus, auditor Auditor, cfg ConsumerConfig) *AuditConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &AuditConsumer{
		bus:         bus,
		auditor:     auditor,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *AuditConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *AuditConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AuditConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *AuditConsumer) processEvent(event entity.TransferEvent) {
	if c.auditor == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate transfer event", "event_id", event.EventID, "tx_id", event.Tx.ID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.auditor.Audit(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to audit transfer after retries", "event_id", event.EventID, "tx_id", event.Tx.ID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// LogAuditor writes one structured log line per completed transfer.
type LogAuditor struct{}

func (LogAuditor) Audit(ctx context.Context, event entity.TransferEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	slog.Info("transfer completed",
		"event_id", event.EventID,
		"tx_id", event.Tx.ID,
		"source", event.Tx.SourceNumber,
		"destination", event.Tx.DestinationNumber,
		"amount", event.Tx.Amount.String(),
	)
	return nil
}
