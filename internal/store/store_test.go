package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/jarbas/internal/document"
	"github.com/dgallion1/jarbas/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_Count(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT count\(\*\) FROM documents`).
		WillReturnRows(mockPool.NewRows([]string{"count"}).AddRow(int64(25000)))

	n, err := store.NewDocuments(mockPool).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25000), n)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDocuments_BulkInsert(t *testing.T) {
	t.Run("Should copy the whole batch in one statement", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		docs := []document.Document{{DocumentID: 1}, {DocumentID: 2}, {DocumentID: 3}}
		mockPool.ExpectCopyFrom(pgx.Identifier{"documents"}, document.Columns).
			WillReturnResult(3)

		n, err := store.NewDocuments(mockPool).BulkInsert(context.Background(), docs)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should skip the database for an empty batch", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		n, err := store.NewDocuments(mockPool).BulkInsert(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should propagate copy failures", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		boom := errors.New("violates not-null constraint")
		mockPool.ExpectCopyFrom(pgx.Identifier{"documents"}, document.Columns).
			WillReturnError(boom)

		_, err = store.NewDocuments(mockPool).BulkInsert(context.Background(), []document.Document{{}})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestDocuments_DeleteAll(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(`DELETE FROM documents`).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	n, err := store.NewDocuments(mockPool).DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
