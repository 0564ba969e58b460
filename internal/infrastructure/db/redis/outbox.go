package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yamdb/yamdb-api/internal/metrics"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

const (
	defaultOutboxKey = "yamdb:mail:outbox"
	claimTTL         = 24 * time.Hour
)

// MailOutbox is a durable FIFO of outgoing mail. Send pushes to the head of
// a list and Receive pops from the tail, so the API process can answer a
// signup without waiting on the mail server.
//
// A message id is claimed under mail:sent:<id> for claimTTL while it is being
// delivered and after it was delivered. A failed delivery releases the claim
// and requeues the message.
type MailOutbox struct {
	client *redis.Client
	key    string
}

// NewMailOutbox wraps client. An empty key selects the default list.
func NewMailOutbox(client *redis.Client, key string) *MailOutbox {
	if key == "" {
		key = defaultOutboxKey
	}
	return &MailOutbox{client: client, key: key}
}

// Send implements ports.Mailer by enqueueing msg.
func (o *MailOutbox) Send(ctx context.Context, msg ports.MailMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}
	if err := o.client.LPush(ctx, o.key, payload).Err(); err != nil {
		metrics.MailSentTotal.WithLabelValues("outbox", "error").Inc()
		return fmt.Errorf("enqueue mail: %w", err)
	}
	metrics.MailSentTotal.WithLabelValues("outbox", "ok").Inc()
	return nil
}

// Receive blocks up to wait for the oldest message. It returns nil, nil when
// nothing arrived in time.
func (o *MailOutbox) Receive(ctx context.Context, wait time.Duration) (*ports.MailMessage, error) {
	res, err := o.client.BRPop(ctx, wait, o.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue mail: %w", err)
	}

	// BRPOP replies with [key, value].
	var msg ports.MailMessage
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, fmt.Errorf("decode mail: %w", err)
	}
	return &msg, nil
}

// Claim reports whether the caller is the first to deliver message id.
func (o *MailOutbox) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := o.client.SetNX(ctx, claimKey(id), "1", claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim mail %s: %w", id, err)
	}
	return ok, nil
}

// Release drops the claim on id so the message can be delivered again.
func (o *MailOutbox) Release(ctx context.Context, id string) error {
	if err := o.client.Del(ctx, claimKey(id)).Err(); err != nil {
		return fmt.Errorf("release mail %s: %w", id, err)
	}
	return nil
}

// Requeue puts msgs back at the receiving end of the list, oldest first, so
// they are the next ones Receive returns.
func (o *MailOutbox) Requeue(ctx context.Context, msgs ...ports.MailMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	payloads := make([]any, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		payload, err := json.Marshal(msgs[i])
		if err != nil {
			return fmt.Errorf("encode mail: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := o.client.RPush(ctx, o.key, payloads...).Err(); err != nil {
		return fmt.Errorf("requeue %d mails: %w", len(msgs), err)
	}
	return nil
}

func claimKey(id string) string {
	return "mail:sent:" + id
}
