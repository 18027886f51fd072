package badge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultAddr is where the badge daemon listens.
const DefaultAddr = "127.0.0.1:7788"

const notifyTimeout = 500 * time.Millisecond

// Notifier forwards remaining time to a running badge daemon. Nobody
// listening is normal and is only logged at debug level.
type Notifier struct {
	client *http.Client
	logger *slog.Logger
	url    string
}

// NewNotifier returns a notifier for the daemon at addr (host:port).
func NewNotifier(addr string, logger *slog.Logger) *Notifier {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Notifier{
		client: &http.Client{Timeout: notifyTimeout},
		logger: logger,
		url:    "http://" + addr + "/v1/badge",
	}
}

// Notify sends one update and gives up quietly on any failure.
func (n *Notifier) Notify(ctx context.Context, remainingSec int) {
	if err := n.send(ctx, remainingSec); err != nil {
		n.logger.Debug("badge update not delivered", "url", n.url, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, remainingSec int) error {
	body, err := json.Marshal(Message{Type: MessageType, RemainingSeconds: remainingSec})
	if err != nil {
		return fmt.Errorf("marshal badge message: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post badge: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // best effort
	}()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("badge daemon returned %s", resp.Status)
	}
	return nil
}
