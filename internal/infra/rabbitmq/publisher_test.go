package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("order.created", map[string]any{"orderId": 7})

	assert.Equal(t, "order.created", env.Pattern)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.OccurredAt.IsZero())

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"pattern":"order.created"`)
	assert.Contains(t, string(body), `"orderId":7`)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pub := NewLogPublisher(zap.New(core))

	err := pub.Publish(context.Background(), "order.status_changed", map[string]any{"to": "shipped"})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "event", entry.Message)
	assert.Equal(t, "order.status_changed", entry.ContextMap()["pattern"])
}
