package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/ports"
	"github.com/yamdb/yamdb-api/internal/metrics"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5
	channelBuffer      = 256
	receiveWait        = 5 * time.Second
	retryBackoff       = time.Second
	handBackTimeout    = 5 * time.Second
)

// MailSource yields queued messages. Receive returns nil, nil when nothing
// arrived within wait.
type MailSource interface {
	Receive(ctx context.Context, wait time.Duration) (*ports.MailMessage, error)
}

// Outbox is the durable store behind the dispatcher. A claim is held while a
// message is in flight and kept once it was delivered.
type Outbox interface {
	MailSource
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
	Requeue(ctx context.Context, msgs ...ports.MailMessage) error
}

// MailDispatcher delivers queued mail through a transport using a fixed set
// of workers. Messages are sharded by recipient, so mail to one address is
// delivered in the order it was queued.
type MailDispatcher struct {
	workers     []chan ports.MailMessage
	transport   ports.Mailer
	outbox      Outbox
	log         zerolog.Logger
	maxAttempts int
	backoff     time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	unsent []ports.MailMessage
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. Without an outbox nothing is
// claimed and failed mail is only logged.
func NewMailDispatcher(numWorkers int, transport ports.Mailer, outbox Outbox, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers:     make([]chan ports.MailMessage, numWorkers),
		transport:   transport,
		outbox:      outbox,
		log:         log,
		maxAttempts: defaultMaxAttempts,
		backoff:     retryBackoff,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MailMessage, channelBuffer)
	}
	return d
}

// Run starts the workers and feeds them from the outbox until ctx is
// cancelled. It returns once every worker has stopped and whatever was
// received but not delivered is back in the outbox.
func (d *MailDispatcher) Run(ctx context.Context) {
	d.Start(ctx)
	if d.outbox != nil {
		d.Drain(ctx, d.outbox)
	} else {
		<-ctx.Done()
	}
	d.wg.Wait()

	pending := d.takeUnsent()
	for _, ch := range d.workers {
	buffered:
		for {
			select {
			case msg := <-ch:
				pending = append(pending, msg)
			default:
				break buffered
			}
		}
	}
	d.handBack("shutdown", pending...)
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands msg to the worker responsible for its first recipient. It
// fails only when ctx ends first.
func (d *MailDispatcher) Enqueue(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx := d.shardIndex(recipient(msg))
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain pulls messages from src into the workers until ctx is cancelled.
func (d *MailDispatcher) Drain(ctx context.Context, src MailSource) {
	for ctx.Err() == nil {
		msg, err := src.Receive(ctx, receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.log.Error().Err(err).Msg("mail outbox receive failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.backoff):
			}
			continue
		}
		if msg == nil {
			continue
		}
		if err := d.Enqueue(ctx, *msg); err != nil {
			d.keepUnsent(*msg)
			return
		}
	}
}

func recipient(msg ports.MailMessage) string {
	if len(msg.To) == 0 {
		return ""
	}
	return msg.To[0]
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MailMessage) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, msg)
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, worker int, msg ports.MailMessage) {
	log := d.log.With().Str("mail_id", msg.ID).Int("worker_id", worker).Logger()

	if ctx.Err() != nil {
		d.keepUnsent(msg)
		return
	}

	claimed := false
	if d.outbox != nil && msg.ID != "" {
		first, err := d.outbox.Claim(ctx, msg.ID)
		if err != nil {
			log.Error().Err(err).Msg("mail claim failed")
			d.retry(ctx, log, msg)
			return
		}
		if !first {
			log.Info().Msg("mail already delivered, skipping")
			return
		}
		claimed = true
	}

	start := time.Now()
	err := d.transport.Send(ctx, msg)
	metrics.MailDeliveryDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}

	if claimed {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handBackTimeout)
		if rerr := d.outbox.Release(rctx, msg.ID); rerr != nil {
			log.Error().Err(rerr).Msg("mail claim not released, retry will be skipped")
		}
		cancel()
	}
	if ctx.Err() != nil {
		d.keepUnsent(msg)
		return
	}

	log.Warn().Err(err).Strs("to", msg.To).Int("attempt", msg.Attempts+1).Msg("mail delivery failed")
	d.retry(ctx, log, msg)
}

// retry counts a failed attempt and, after a pause, hands msg back to the
// outbox unless it has run out of attempts.
func (d *MailDispatcher) retry(ctx context.Context, log zerolog.Logger, msg ports.MailMessage) {
	msg.Attempts++
	if msg.Attempts >= d.maxAttempts {
		metrics.MailRetriesTotal.WithLabelValues("dropped").Inc()
		log.Error().Strs("to", msg.To).Int("attempts", msg.Attempts).Msg("mail dropped after repeated failures")
		return
	}

	select {
	case <-ctx.Done():
		d.keepUnsent(msg)
		return
	case <-time.After(d.backoff):
	}
	d.handBack("failed", msg)
}

func (d *MailDispatcher) keepUnsent(msg ports.MailMessage) {
	d.mu.Lock()
	d.unsent = append(d.unsent, msg)
	d.mu.Unlock()
}

func (d *MailDispatcher) takeUnsent() []ports.MailMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.unsent
	d.unsent = nil
	return out
}

// handBack returns msgs to the outbox, oldest first.
func (d *MailDispatcher) handBack(reason string, msgs ...ports.MailMessage) {
	if len(msgs) == 0 {
		return
	}
	if d.outbox == nil {
		d.log.Error().Int("count", len(msgs)).Str("reason", reason).Msg("mail lost, no outbox to return it to")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handBackTimeout)
	defer cancel()
	if err := d.outbox.Requeue(ctx, msgs...); err != nil {
		d.log.Error().Err(err).Int("count", len(msgs)).Str("reason", reason).Msg("mail requeue failed")
		return
	}
	metrics.MailRetriesTotal.WithLabelValues(reason).Add(float64(len(msgs)))
	d.log.Info().Int("count", len(msgs)).Str("reason", reason).Msg("mail returned to outbox")
}
