package formula

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateParallelMatchesCalculate(t *testing.T) {
	build := func() *Spreadsheet {
		s := NewSpreadsheet()
		require.NoError(t, s.AddWorksheet("Sheet1"))
		require.NoError(t, s.Set("Sheet1!A1", 1.0))
		require.NoError(t, s.Set("Sheet1!A2", 2.0))
		require.NoError(t, s.Set("Sheet1!A3", "=A1+A2"))
		require.NoError(t, s.Set("Sheet1!A4", "=SUM(A1:A3)*2"))
		require.NoError(t, s.Set("Sheet1!A5", "=LET(total, A4, total / 2)"))
		return s
	}

	single := build()
	require.NoError(t, single.Calculate())

	parallel := build()
	require.NoError(t, parallel.CalculateParallel(context.Background()))

	for _, address := range []string{"Sheet1!A3", "Sheet1!A4", "Sheet1!A5"} {
		singleVal, err := single.Get(address)
		require.NoError(t, err)
		parallelVal, err := parallel.Get(address)
		require.NoError(t, err)
		assert.Equal(t, singleVal, parallelVal, "mismatch at %s", address)
	}
}

func TestCalculateParallelDetectsCycle(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", "=A2"))
	require.NoError(t, s.Set("Sheet1!A2", "=A1"))

	require.NoError(t, s.CalculateParallel(context.Background()))

	val, err := s.Get("Sheet1!A1")
	require.NoError(t, err)
	spreadsheetErr, ok := val.(*SpreadsheetError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeCirc, spreadsheetErr.ErrorCode)
}

func TestCalculateParallelHonorsContextCancellation(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", "=1+1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CalculateParallel(ctx)
	require.Error(t, err)
}

func TestCalculateParallelSpillsArrayFormulas(t *testing.T) {
	s := NewSpreadsheet()
	require.NoError(t, s.AddWorksheet("Sheet1"))
	require.NoError(t, s.Set("Sheet1!A1", "=SEQUENCE(2,2)"))

	require.NoError(t, s.CalculateParallel(context.Background()))

	anchor, err := s.Get("Sheet1!A1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, anchor)

	follower, err := s.Get("Sheet1!B2")
	require.NoError(t, err)
	assert.Equal(t, 4.0, follower)
}
