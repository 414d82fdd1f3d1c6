package deal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock returns successive times a minute apart.
func clock() func() time.Time {
	t := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newMemoryStore(t *testing.T) Store {
	s := NewMemoryStore()
	s.now = clock()
	return s
}

func newSQLiteStore(t *testing.T) Store {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "deals.db"), nil)
	require.NoError(t, err)
	s.now = clock()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var stores = map[string]func(t *testing.T) Store{
	"memory": newMemoryStore,
	"sqlite": newSQLiteStore,
}

func TestCreateAndGet(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			created, err := s.Create(ctx, Profile{Name: "  Flat 3  ", Address: "12 High Street", Notes: "Short lease"})
			require.NoError(t, err)
			assert.True(t, ValidID(created.ID))
			assert.Equal(t, "Flat 3", created.Name)
			assert.Equal(t, created.CreatedAt, created.UpdatedAt)
			assert.Empty(t, created.Calculations)

			got, err := s.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Name, got.Name)
			assert.Equal(t, "12 High Street", got.Address)
			assert.Equal(t, "Short lease", got.Notes)
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
			assert.NotNil(t, got.Calculations)
		})
	}
}

func TestCreateRequiresName(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := newStore(t).Create(context.Background(), Profile{Name: "   "})
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := newStore(t).Get(context.Background(), "7d0f4c1e-0000-4000-8000-000000000000")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			empty, err := s.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			for _, n := range []string{"first", "second", "third"} {
				_, err := s.Create(ctx, Profile{Name: n})
				require.NoError(t, err)
			}

			profiles, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, profiles, 3)
			assert.Equal(t, "third", profiles[0].Name)
			assert.Equal(t, "second", profiles[1].Name)
			assert.Equal(t, "first", profiles[2].Name)
		})
	}
}

func TestSaveCalculationLatestWins(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			created, err := s.Create(ctx, Profile{Name: "Terrace"})
			require.NoError(t, err)

			_, err = s.SaveCalculation(ctx, created.ID, Calculation{
				Calculator: "yield",
				Inputs:     map[string]string{"purchasePrice": "200000", "monthlyRent": "1000"},
				Metrics:    map[string]float64{"grossYield": 6},
			})
			require.NoError(t, err)

			_, err = s.SaveCalculation(ctx, created.ID, Calculation{
				Calculator: "stamp-duty",
				Inputs:     map[string]string{"purchasePrice": "200000"},
				Metrics:    map[string]float64{"stampDuty": 1500},
			})
			require.NoError(t, err)

			updated, err := s.SaveCalculation(ctx, created.ID, Calculation{
				Calculator: "yield",
				Inputs:     map[string]string{"purchasePrice": "200000", "monthlyRent": "1100"},
				Metrics:    map[string]float64{"grossYield": 6.6},
				Analysis: &analysis.Analysis{
					Summary:         "Solid yield",
					Verdict:         "Proceed",
					Insights:        []analysis.Insight{{Type: analysis.InsightPositive, Title: "Yield", Message: "Above 6%"}},
					Recommendations: []string{"Check voids"},
				},
			})
			require.NoError(t, err)

			require.Len(t, updated.Calculations, 2)
			assert.Equal(t, "stamp-duty", updated.Calculations[0].Calculator)
			yield := updated.Calculations[1]
			assert.Equal(t, "yield", yield.Calculator)
			assert.Equal(t, "1100", yield.Inputs["monthlyRent"])
			assert.InDelta(t, 6.6, yield.Metrics["grossYield"], 1e-9)
			require.NotNil(t, yield.Analysis)
			assert.Equal(t, "Proceed", yield.Analysis.Verdict)
			assert.Equal(t, []string{"Check voids"}, yield.Analysis.Recommendations)
			assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
			assert.True(t, yield.SavedAt.Equal(updated.UpdatedAt))
			assert.Nil(t, updated.Calculations[0].Analysis)

			got, err := s.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Len(t, got.Calculations, 2)
		})
	}
}

func TestSaveCalculationErrors(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.SaveCalculation(ctx, "missing", Calculation{Calculator: "yield"})
			assert.ErrorIs(t, err, ErrNotFound)

			created, err := s.Create(ctx, Profile{Name: "Bungalow"})
			require.NoError(t, err)
			_, err = s.SaveCalculation(ctx, created.ID, Calculation{})
			assert.ErrorIs(t, err, ErrInvalidProfile)

			saved, err := s.SaveCalculation(ctx, created.ID, Calculation{Calculator: "epc-upgrade"})
			require.NoError(t, err)
			require.Len(t, saved.Calculations, 1)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			created, err := s.Create(ctx, Profile{Name: "Maisonette"})
			require.NoError(t, err)
			_, err = s.SaveCalculation(ctx, created.ID, Calculation{Calculator: "hmo"})
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, created.ID))
			_, err = s.Get(ctx, created.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	created, err := s.Create(ctx, Profile{Name: "Cottage"})
	require.NoError(t, err)
	inputs := map[string]string{"purchasePrice": "150000"}
	saved, err := s.SaveCalculation(ctx, created.ID, Calculation{Calculator: "yield", Inputs: inputs})
	require.NoError(t, err)

	inputs["purchasePrice"] = "1"
	saved.Calculations[0].Inputs["purchasePrice"] = "2"

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "150000", got.Calculations[0].Inputs["purchasePrice"])
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deals.db")

	first, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	created, err := first.Create(ctx, Profile{Name: "Semi"})
	require.NoError(t, err)
	_, err = first.SaveCalculation(ctx, created.ID, Calculation{
		Calculator: "stamp-duty",
		Metrics:    map[string]float64{"stampDuty": 4750},
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Calculations, 1)
	assert.Equal(t, 4750.0, got.Calculations[0].Metrics["stampDuty"])
	assert.NotNil(t, got.Calculations[0].Inputs)
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("", nil)
	assert.Error(t, err)
}
