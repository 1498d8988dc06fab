package api

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

const entityEventsPath = "/api/entities/events"

// SubscribeEntityChanges opens the hub's entity change stream. Each value
// received is the path of a changed entity definition. The channel is
// closed when ctx is cancelled or the server ends the stream; cancelling ctx
// is the only way to unsubscribe.
func (c *Client) SubscribeEntityChanges(ctx context.Context) (<-chan string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, entityEventsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any per-request timeout.
	stream := &http.Client{Transport: c.httpClient.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe entity changes: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("subscribe entity changes: HTTP %d", resp.StatusCode)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		c.logger.Debug("entity change stream opened")

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			path, ok := parseEventData(scanner.Text())
			if !ok {
				continue
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			c.logger.Warn("entity change stream ended", "error", err)
		}
	}()
	return out, nil
}

// parseEventData extracts the payload of an SSE "data:" line.
func parseEventData(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" {
		return "", false
	}
	return payload, true
}
