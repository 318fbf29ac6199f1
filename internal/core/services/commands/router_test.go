package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wguard/internal/adapters/bus"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// recorder collects the typed commands each handler received.
type recorder struct {
	trust   []domain.TrustUpdateCommand
	blocks  []domain.BlockCommand
	assess  []domain.AssessmentCommand
	blockFn func(domain.BlockCommand) error
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		TrustUpdate: func(_ context.Context, cmd domain.TrustUpdateCommand) error {
			r.trust = append(r.trust, cmd)
			return nil
		},
		Block: func(_ context.Context, cmd domain.BlockCommand) error {
			r.blocks = append(r.blocks, cmd)
			if r.blockFn != nil {
				return r.blockFn(cmd)
			}
			return nil
		},
		RunAssessment: func(_ context.Context, cmd domain.AssessmentCommand) error {
			r.assess = append(r.assess, cmd)
			return nil
		},
	}
}

func newBoundRouter(t *testing.T) (*recorder, *bus.MemoryBus) {
	t.Helper()
	rec := &recorder{}
	router, err := NewRouter(rec.handlers())
	require.NoError(t, err)

	mem := bus.NewMemory()
	require.NoError(t, router.Bind(mem))
	return rec, mem
}

func TestNewRouter_RejectsNilHandlers(t *testing.T) {
	rec := &recorder{}
	h := rec.handlers()

	h.Block = nil
	_, err := NewRouter(h)
	assert.Error(t, err)

	h = rec.handlers()
	h.TrustUpdate = nil
	_, err = NewRouter(h)
	assert.Error(t, err)

	h = rec.handlers()
	h.RunAssessment = nil
	_, err = NewRouter(h)
	assert.Error(t, err)
}

func TestRouter_BlockDefaultsAndValidation(t *testing.T) {
	rec, mem := newBoundRouter(t)
	ctx := context.Background()

	mem.Deliver(ctx, domain.TopicCmdBlock, []byte(`{"target_bssid":"DE:AD:BE:EF:00:01"}`))
	require.Len(t, rec.blocks, 1)
	assert.Equal(t, "wlan1", rec.blocks[0].Interface, "absent interface defaults")
	assert.Equal(t, 10, rec.blocks[0].Count, "absent count defaults")

	// Explicit fields survive.
	mem.Deliver(ctx, domain.TopicCmdBlock, []byte(`{"target_bssid":"de:ad:be:ef:00:02","interface":"wlan0","count":3}`))
	require.Len(t, rec.blocks, 2)
	assert.Equal(t, "wlan0", rec.blocks[1].Interface)
	assert.Equal(t, 3, rec.blocks[1].Count)

	// Garbage target, malformed JSON and a missing target are all rejected
	// before the handler.
	mem.Deliver(ctx, domain.TopicCmdBlock, []byte(`{"target_bssid":"not-a-mac"}`))
	mem.Deliver(ctx, domain.TopicCmdBlock, []byte(`{broken`))
	mem.Deliver(ctx, domain.TopicCmdBlock, []byte(`{}`))
	assert.Len(t, rec.blocks, 2)
}

func TestRouter_TrustUpdateEmptyIsNoop(t *testing.T) {
	rec, mem := newBoundRouter(t)
	ctx := context.Background()

	mem.Deliver(ctx, domain.TopicCmdUpdateTrusted, []byte(`{}`))
	assert.Empty(t, rec.trust, "neither key present is a no-op")

	mem.Deliver(ctx, domain.TopicCmdUpdateTrusted, []byte(`{"public":{"CafeWifi":["11:22:33:44:55:66"]}}`))
	require.Len(t, rec.trust, 1)
	assert.Nil(t, rec.trust[0].Personal)
	assert.Contains(t, rec.trust[0].Public, "CafeWifi")
}

func TestRouter_RunAssessmentKinds(t *testing.T) {
	rec, mem := newBoundRouter(t)
	ctx := context.Background()

	mem.Deliver(ctx, domain.TopicCmdRunAssessment, []byte(`{"assessment_type":"Protocol"}`))
	mem.Deliver(ctx, domain.TopicCmdRunAssessment, []byte(`{"assessment_type":"password"}`))
	mem.Deliver(ctx, domain.TopicCmdRunAssessment, []byte(`{"assessment_type":"firmware"}`))

	require.Len(t, rec.assess, 2, "unknown kinds are rejected at decode")
	assert.Equal(t, domain.AssessmentProtocol, rec.assess[0].Type, "kind is case-insensitive")
	assert.Equal(t, domain.AssessmentPassword, rec.assess[1].Type)
}

func TestRouter_HandlerErrorDoesNotPropagate(t *testing.T) {
	rec := &recorder{blockFn: func(domain.BlockCommand) error { return assert.AnError }}
	router, err := NewRouter(rec.handlers())
	require.NoError(t, err)

	mem := bus.NewMemory()
	require.NoError(t, router.Bind(mem))

	// Delivery must not panic or error out of the bus.
	mem.Deliver(context.Background(), domain.TopicCmdBlock, []byte(`{"target_bssid":"de:ad:be:ef:00:01"}`))
	assert.Len(t, rec.blocks, 1)
}

func TestRouter_TopicsCoverCommandPlane(t *testing.T) {
	router, err := NewRouter((&recorder{}).handlers())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		domain.TopicCmdUpdateTrusted,
		domain.TopicCmdBlock,
		domain.TopicCmdRunAssessment,
	}, router.Topics())
}
