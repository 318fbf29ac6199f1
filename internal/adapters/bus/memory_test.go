package bus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishRecordsAndDelivers(t *testing.T) {
	b := NewMemory()

	var got []string
	require.NoError(t, b.Subscribe("alerts/deauth", func(_ context.Context, topic string, payload []byte) {
		got = append(got, string(payload))
	}))

	require.NoError(t, b.Publish(context.Background(), "alerts/deauth", map[string]string{"k": "v"}))
	require.NoError(t, b.Publish(context.Background(), "alerts/rogue_ap", map[string]string{"other": "topic"}))

	require.Len(t, got, 1, "only the subscribed topic is delivered")
	assert.JSONEq(t, `{"k":"v"}`, got[0])

	assert.Len(t, b.Published(), 2)
	assert.Len(t, b.PublishedOn("alerts/deauth"), 1)
	assert.Len(t, b.PublishedOn("alerts/rogue_ap"), 1)
}

func TestMemoryBus_DeliverReachesAllSubscribers(t *testing.T) {
	b := NewMemory()

	calls := 0
	handler := func(_ context.Context, _ string, payload []byte) {
		var cmd struct {
			TargetBSSID string `json:"target_bssid"`
		}
		require.NoError(t, json.Unmarshal(payload, &cmd))
		assert.Equal(t, "de:ad:be:ef:00:01", cmd.TargetBSSID)
		calls++
	}
	require.NoError(t, b.Subscribe("commands/block", handler))
	require.NoError(t, b.Subscribe("commands/block", handler))

	b.Deliver(context.Background(), "commands/block", []byte(`{"target_bssid":"de:ad:be:ef:00:01"}`))
	assert.Equal(t, 2, calls)
}

func TestMemoryBus_ClosedRejectsPublish(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), "alerts/deauth", "x"))
}

func TestMemoryBus_UnmarshalablePayload(t *testing.T) {
	b := NewMemory()
	assert.Error(t, b.Publish(context.Background(), "alerts/deauth", make(chan int)))
	assert.Empty(t, b.Published())
}
