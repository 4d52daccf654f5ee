package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packhouse/backend/internal/domain/reconciliation"
)

func TestLocalRunLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("serializes acquisition per key", func(t *testing.T) {
		locker := NewLocalRunLocker()

		lock, err := locker.Acquire(ctx, "tenant_aaaaaaaa")
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, "tenant_aaaaaaaa")
		assert.ErrorIs(t, err, reconciliation.ErrRunInProgress)

		require.NoError(t, lock.Release(ctx))
		_, err = locker.Acquire(ctx, "tenant_aaaaaaaa")
		assert.NoError(t, err)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		locker := NewLocalRunLocker()

		_, err := locker.Acquire(ctx, "tenant_aaaaaaaa")
		require.NoError(t, err)
		_, err = locker.Acquire(ctx, "tenant_bbbbbbbb")
		assert.NoError(t, err)
	})

	t.Run("double release does not free a re-acquired lock", func(t *testing.T) {
		locker := NewLocalRunLocker()

		first, err := locker.Acquire(ctx, "tenant_aaaaaaaa")
		require.NoError(t, err)
		require.NoError(t, first.Release(ctx))

		_, err = locker.Acquire(ctx, "tenant_aaaaaaaa")
		require.NoError(t, err)

		// stale handle released again, the second holder must keep the lock
		require.NoError(t, first.Release(ctx))
		_, err = locker.Acquire(ctx, "tenant_aaaaaaaa")
		assert.ErrorIs(t, err, reconciliation.ErrRunInProgress)
	})
}
