package publish

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"promocast.app/engine/core/config"
)

// ResultUpdate is one entry from a publish session's results stream: a
// delivery backend reporting progress for a single platform, or the terminal
// sentinel closing the session.
type ResultUpdate struct {
	Platform string
	Success  bool
	Error    string
	Done     bool
}

// ResultsConsumer tails the Redis stream the backend publishes per-platform
// delivery progress to, keyed by publish session id. Browser-automation
// deliveries are slow; the stream lets the UI follow along instead of
// staring at a five-minute spinner.
type ResultsConsumer struct {
	client *redis.Client
	cfg    config.ResultsConfig
}

func NewResultsConsumer(client *redis.Client, cfg config.ResultsConfig) *ResultsConsumer {
	return &ResultsConsumer{client: client, cfg: cfg}
}

// Watch reads the session's stream from the beginning and invokes fn for
// every update until the terminal entry arrives or ctx is cancelled.
// Starting from "0" instead of "$" means updates published before the watch
// began are not lost.
func (c *ResultsConsumer) Watch(ctx context.Context, sessionID string, fn func(ResultUpdate)) error {
	stream := c.cfg.StreamPrefix + sessionID
	lastID := "0"

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := c.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   16,
			Block:   c.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading results stream %s: %w", stream, err)
		}

		for _, st := range res {
			for _, msg := range st.Messages {
				lastID = msg.ID
				update := parseUpdate(msg)
				fn(update)
				if update.Done {
					return nil
				}
			}
		}
	}
}

func parseUpdate(msg redis.XMessage) ResultUpdate {
	return ResultUpdate{
		Platform: stringValue(msg.Values, "platform"),
		Success:  boolValue(msg.Values, "success"),
		Error:    stringValue(msg.Values, "error"),
		Done:     stringValue(msg.Values, "status") == "done",
	}
}

func stringValue(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}

func boolValue(values map[string]any, key string) bool {
	b, err := strconv.ParseBool(stringValue(values, key))
	return err == nil && b
}
