package counter

import (
	"context"
	"strconv"

	"github.com/nimbushost/NimbusPanel/internal/pkg/cache"
)

const (
	webhookReceivedKey  = "webhook:counters:received"
	webhookProcessedKey = "webhook:counters:processed"
	webhookFailedKey    = "webhook:counters:failed"
)

// AddWebhookReceived increments the received counter for an event type in Redis
func AddWebhookReceived(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookReceivedKey, eventType, 1).Err()
}

// AddWebhookProcessed increments the processed counter for an event type in Redis
func AddWebhookProcessed(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookProcessedKey, eventType, 1).Err()
}

// AddWebhookFailed increments the failed counter for an event type in Redis
func AddWebhookFailed(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookFailedKey, eventType, 1).Err()
}

// WebhookSnapshot holds per-event-type webhook delivery counts.
type WebhookSnapshot struct {
	Received  map[string]int64 `json:"received"`
	Processed map[string]int64 `json:"processed"`
	Failed    map[string]int64 `json:"failed"`
}

// GetWebhookSnapshot reads all webhook counters from Redis. Missing hashes
// come back as empty maps, never as an error.
func GetWebhookSnapshot() WebhookSnapshot {
	return WebhookSnapshot{
		Received:  readHash(webhookReceivedKey),
		Processed: readHash(webhookProcessedKey),
		Failed:    readHash(webhookFailedKey),
	}
}

func readHash(key string) map[string]int64 {
	ctx := context.Background()
	out := make(map[string]int64)

	data, err := cache.GetClient().HGetAll(ctx, key).Result()
	if err != nil {
		return out
	}
	for field, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[field] = n
	}
	return out
}
