package firebase

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"fintrack/internal/shared/logger"
)

// fcmBatchLimit is the maximum number of tokens per multicast request.
const fcmBatchLimit = 500

// TokenDeactivator marks an unregistered FCM token as inactive.
type TokenDeactivator func(ctx context.Context, token string) error

// multicastSender is the part of *messaging.Client the Client uses.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client implements notification.Messenger with Firebase Cloud Messaging.
type Client struct {
	sender      multicastSender
	deactivator TokenDeactivator
	log         *slog.Logger
}

// NewClient initialises a Firebase app from a service account file.
// deactivator may be nil.
func NewClient(ctx context.Context, credentialsFile string, deactivator TokenDeactivator) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return newClient(msgClient, deactivator), nil
}

func newClient(sender multicastSender, deactivator TokenDeactivator) *Client {
	return &Client{
		sender:      sender,
		deactivator: deactivator,
		log:         logger.WithComponent("fcm"),
	}
}

// SendMulticast pushes one notification to every token, batching by the FCM
// limit. Per-token failures are logged and unregistered tokens deactivated.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	var success, failure int
	for _, batch := range chunkTokens(tokens, fcmBatchLimit) {
		msg := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
		}

		resp, err := c.sender.SendEachForMulticast(ctx, msg)
		if err != nil {
			return fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		success += resp.SuccessCount
		failure += resp.FailureCount
		if resp.FailureCount > 0 {
			c.handleFailures(ctx, batch, resp)
		}
	}

	c.log.DebugContext(ctx, "fcm multicast sent", "success", success, "failure", failure)
	return nil
}

func (c *Client) handleFailures(ctx context.Context, tokens []string, resp *messaging.BatchResponse) {
	for i, r := range resp.Responses {
		if r.Error == nil || i >= len(tokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
			c.log.InfoContext(ctx, "deactivating invalid fcm token", "token", maskToken(tokens[i]), logger.Err(r.Error))
			c.deactivateToken(ctx, tokens[i])
			continue
		}
		c.log.WarnContext(ctx, "fcm send failed", "token", maskToken(tokens[i]), logger.Err(r.Error))
	}
}

func (c *Client) deactivateToken(ctx context.Context, token string) {
	if c.deactivator == nil {
		return
	}
	if err := c.deactivator(ctx, token); err != nil {
		c.log.ErrorContext(ctx, "failed to deactivate fcm token", "token", maskToken(token), logger.Err(err))
	}
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(tokens); i += size {
		end := min(i+size, len(tokens))
		chunks = append(chunks, tokens[i:end])
	}
	return chunks
}

// maskToken keeps only the ends of a token for logs.
func maskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:6] + "..." + token[len(token)-4:]
}
