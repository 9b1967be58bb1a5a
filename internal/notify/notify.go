// Package notify announces new content to Web Push subscribers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Subscriptions is the subscriber registry.
type Subscriptions interface {
	List() ([]*entity.PushSubscription, error)
	Remove(id string) error
}

// Keys is the VAPID identity of the server.
type Keys struct {
	Public  string
	Private string
	// Subject is a contact URL or email address for push services.
	Subject string
}

// Sender delivers one push message. It has the signature of
// webpush.SendNotification.
type Sender func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Notifier broadcasts to every subscription. It is disabled when the VAPID
// keys are missing.
type Notifier struct {
	subs Subscriptions
	keys Keys
	send Sender
	wg   sync.WaitGroup
}

// New returns a Notifier sending with webpush.SendNotification.
func New(subs Subscriptions, keys Keys) *Notifier {
	return &Notifier{subs: subs, keys: keys, send: webpush.SendNotification}
}

// WithSender replaces the delivery function.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.send = s
	return n
}

// Enabled reports whether VAPID keys are configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.keys.Public != "" && n.keys.Private != ""
}

// Message is the JSON payload pushed to browsers.
type Message struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Announce broadcasts in the background. Failures are logged.
func (n *Notifier) Announce(ctx context.Context, title, url string) {
	if !n.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.wg.Go(func() {
		sent, err := n.Broadcast(ctx, title, url)
		if err != nil {
			slog.ErrorContext(ctx, "Push broadcast failed", "err", err)
			return
		}
		slog.InfoContext(ctx, "Push broadcast", "title", title, "sent", sent)
	})
}

// Wait blocks until background broadcasts are done.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Broadcast sends the message to every subscription and returns how many
// deliveries succeeded. Subscriptions the push service reports as gone are
// removed.
func (n *Notifier) Broadcast(ctx context.Context, title, url string) (int, error) {
	if !n.Enabled() {
		return 0, nil
	}
	payload, err := json.Marshal(Message{Title: title, URL: url})
	if err != nil {
		return 0, fmt.Errorf("failed to encode push message: %w", err)
	}
	subs, err := n.subs.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	opts := &webpush.Options{
		Subscriber:      n.keys.Subject,
		VAPIDPublicKey:  n.keys.Public,
		VAPIDPrivateKey: n.keys.Private,
		TTL:             86400,
	}
	sent := 0
	for _, sub := range subs {
		resp, err := n.send(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, opts)
		if err != nil {
			slog.WarnContext(ctx, "Web push send failed", "err", err, "endpoint", sub.Endpoint)
			continue
		}
		_ = resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
			if err := n.subs.Remove(sub.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to delete expired push subscription", "err", err, "sub_id", sub.ID)
			}
		case resp.StatusCode >= 300:
			slog.WarnContext(ctx, "Web push rejected", "status", resp.StatusCode, "endpoint", sub.Endpoint)
		default:
			sent++
		}
	}
	return sent, nil
}

// GenerateKeys creates a fresh VAPID key pair.
func GenerateKeys() (public, private string, err error) {
	private, public, err = webpush.GenerateVAPIDKeys()
	return public, private, err
}
