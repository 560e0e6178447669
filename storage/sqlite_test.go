package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pewresearch/search-sampler/model"
)

func TestSqliteSaveLoadRun(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	queryTime := time.Date(2017, time.February, 1, 12, 30, 0, 0, time.UTC)
	rows := sampleRows(queryTime)

	runID, err := store.SaveRun(ctx, model.Subdivisions("US-DC"), "flu_symptoms", rows)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	loaded, err := store.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestSqliteRunsAreIsolated(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := sampleRows(time.Date(2017, time.February, 1, 0, 0, 0, 0, time.UTC))
	second := sampleRows(time.Date(2017, time.February, 2, 0, 0, 0, 0, time.UTC))

	id1, err := store.SaveRun(ctx, model.Country("US"), "test", first)
	require.NoError(t, err)
	id2, err := store.SaveRun(ctx, model.Country("US"), "test", second)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	loaded, err := store.LoadRun(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, first, loaded)
}

func TestSqliteListRuns(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rows := sampleRows(time.Date(2017, time.February, 1, 0, 0, 0, 0, time.UTC))

	runID, err := store.SaveRun(ctx, model.DMA(511), "flu_symptoms", rows)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "511", runs[0].Region)
	assert.Equal(t, "flu_symptoms", runs[0].Name)
	assert.Equal(t, len(rows), runs[0].RowCount)
}

func TestSqliteLoadUnknownRun(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LoadRun(context.Background(), "no-such-run")
	require.Error(t, err)
}
