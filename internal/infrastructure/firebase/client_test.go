package firebase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	SendFunc func(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
	batches  [][]string
}

func (m *MockSender) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	m.batches = append(m.batches, msg.Tokens)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}, nil
}

func TestChunkTokens(t *testing.T) {
	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}

	chunks := chunkTokens(tokens, fcmBatchLimit)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 201)
	assert.Nil(t, chunkTokens(nil, fcmBatchLimit))
}

func TestSendMulticast_NoTokens(t *testing.T) {
	sender := &MockSender{}
	c := newClient(sender, nil)

	require.NoError(t, c.SendMulticast(context.Background(), nil, "t", "b", nil))
	assert.Empty(t, sender.batches)
}

func TestSendMulticast_Batches(t *testing.T) {
	sender := &MockSender{}
	c := newClient(sender, nil)

	tokens := make([]string, 750)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("token-%d", i)
	}

	require.NoError(t, c.SendMulticast(context.Background(), tokens, "Budget Alert", "75% spent", map[string]string{"type": "budget_alert"}))
	require.Len(t, sender.batches, 2)
	assert.Len(t, sender.batches[1], 250)
}

func TestSendMulticast_TransportError(t *testing.T) {
	sender := &MockSender{
		SendFunc: func(context.Context, *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			return nil, errors.New("unavailable")
		},
	}
	c := newClient(sender, nil)

	err := c.SendMulticast(context.Background(), []string{"a"}, "t", "b", nil)
	assert.ErrorContains(t, err, "unavailable")
}

func TestSendMulticast_OtherFailuresKeepToken(t *testing.T) {
	var deactivated []string
	sender := &MockSender{
		SendFunc: func(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			return &messaging.BatchResponse{
				SuccessCount: 1,
				FailureCount: 1,
				Responses: []*messaging.SendResponse{
					{Success: true},
					{Error: errors.New("internal")},
				},
			}, nil
		},
	}
	c := newClient(sender, func(_ context.Context, token string) error {
		deactivated = append(deactivated, token)
		return nil
	})

	require.NoError(t, c.SendMulticast(context.Background(), []string{"ok-token", "flaky-token"}, "t", "b", nil))
	assert.Empty(t, deactivated)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "abcdef...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}
