package services

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// FCM accepts at most this many tokens per multicast.
const fcmMulticastLimit = 500

type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(ctx context.Context, credentialsFile string) (*FirebasePusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FirebasePusher{client: client}, nil
}

func (p *FirebasePusher) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	for start := 0; start < len(tokens); start += fcmMulticastLimit {
		end := min(start+fcmMulticastLimit, len(tokens))
		resp, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       tokens[start:end],
			Notification: &messaging.Notification{Title: title, Body: body},
			Data:         data,
		})
		if err != nil {
			return fmt.Errorf("fcm multicast: %w", err)
		}
		if resp.FailureCount > 0 {
			slog.Warn("⚠️  Some push notifications failed", "failed", resp.FailureCount, "sent", resp.SuccessCount)
		}
	}
	return nil
}
