package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozgurk/folio"
)

func snap(parent, slug string, on folio.Date) *folio.Snapshot {
	return &folio.Snapshot{
		ID:         uuid.New(),
		Kind:       folio.PortfolioSnapshot,
		ParentID:   parent,
		On:         on,
		Name:       slug,
		Slug:       slug,
		Currency:   "TRY",
		TotalValue: folio.M(100, "TRY"),
		Items:      []folio.SnapshotItem{{Label: "THYAO", Value: folio.M(100, "TRY")}},
	}
}

func TestSaveRejectsDuplicateSlug(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, snap("p1", "jan#abc123", folio.NewDate(2025, 1, 31))))
	assert.Error(t, m.Save(ctx, snap("p1", "jan#abc123", folio.NewDate(2025, 2, 28))))

	exists, err := m.SlugExists(ctx, "jan#abc123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLatestBefore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, snap("p1", "jan#000001", folio.NewDate(2025, 1, 31))))
	require.NoError(t, m.Save(ctx, snap("p1", "feb#000002", folio.NewDate(2025, 2, 28))))
	require.NoError(t, m.Save(ctx, snap("p2", "other#0001", folio.NewDate(2025, 3, 31))))

	got, err := m.LatestBefore(ctx, folio.PortfolioSnapshot, "p1", folio.NewDate(2025, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, "feb#000002", got.Slug)

	// strictly before: a snapshot on the query date is not its own predecessor
	got, err = m.LatestBefore(ctx, folio.PortfolioSnapshot, "p1", folio.NewDate(2025, 2, 28))
	require.NoError(t, err)
	assert.Equal(t, "jan#000001", got.Slug)

	_, err = m.LatestBefore(ctx, folio.PortfolioSnapshot, "p1", folio.NewDate(2025, 1, 1))
	assert.True(t, errors.Is(err, folio.ErrNoSnapshot))

	_, err = m.LatestBefore(ctx, folio.CashFlowSnapshot, "p1", folio.NewDate(2025, 3, 15))
	assert.True(t, errors.Is(err, folio.ErrNoSnapshot))
}

func TestSetIRR(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s := snap("p1", "jan#xyz789", folio.NewDate(2025, 1, 31))
	require.NoError(t, m.Save(ctx, s))
	require.NoError(t, m.SetIRR(ctx, s.ID, 12.5))

	got, err := m.Get(ctx, "jan#xyz789")
	require.NoError(t, err)
	require.NotNil(t, got.IRRPct)
	assert.Equal(t, 12.5, *got.IRRPct)

	assert.Error(t, m.SetIRR(ctx, uuid.New(), 1))
}

func TestSavedSnapshotIsIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s := snap("p1", "jan#aaaaaa", folio.NewDate(2025, 1, 31))
	require.NoError(t, m.Save(ctx, s))
	s.Items[0].Label = "mutated"

	got, err := m.Get(ctx, "jan#aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "THYAO", got.Items[0].Label)
}
