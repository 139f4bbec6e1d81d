package notification

import "context"

// Messenger delivers push notifications. Implemented by the Firebase FCM
// client, which deactivates unregistered tokens itself.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
