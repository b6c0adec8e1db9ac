package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromEmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "approved_codes", []string{"code", "description"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"approved_codes"}, []string{"code", "description"}).WillReturnResult(2)

	rows := [][]any{{"332710", "Machine Shops"}, {"541511", "Custom Computer Programming Services"}}
	n, err := CopyFrom(context.Background(), mock, "approved_codes", []string{"code", "description"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"approved_codes"}, []string{"code", "description"}).
		WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "approved_codes", []string{"code", "description"}, [][]any{{"1", "x"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
