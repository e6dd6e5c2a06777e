package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_ReservaGuardaYRepite(t *testing.T) {
	s := NewInMemoryIdempotencyStore()
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "segunda reserva de la misma clave")

	_, err = s.Get(ctx, "k1")
	assert.True(t, errors.Is(err, ErrInProgress))

	require.NoError(t, s.Save(ctx, "k1", StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"F-2026-000001"}`)}, time.Minute))
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.Status)
	assert.JSONEq(t, `{"id":"F-2026-000001"}`, string(got.Body))
}

func TestInMemory_ReleaseLiberaLaClave(t *testing.T) {
	s := NewInMemoryIdempotencyStore()
	ctx := context.Background()

	_, _ = s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, s.Release(ctx, "k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemory_Vencimiento(t *testing.T) {
	s := NewInMemoryIdempotencyStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", StoredResponse{Status: 200}, time.Minute))
	now = now.Add(time.Minute)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got, "vencida")

	ok, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
