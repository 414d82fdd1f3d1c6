// Package deal persists deal profiles: a property under consideration and
// the latest result of each calculator run against it.
package deal

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/property-finance/internal/analysis"
)

var (
	// ErrNotFound is returned when no deal has the requested ID.
	ErrNotFound = errors.New("deal not found")
	// ErrInvalidProfile is returned when a deal cannot be stored as given.
	ErrInvalidProfile = errors.New("invalid deal profile")
)

// Profile is a saved deal.
type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Address      string        `json:"address,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Calculations []Calculation `json:"calculations"`
}

// Calculation is one calculator run saved against a deal.
type Calculation struct {
	Calculator string             `json:"calculator"`
	Inputs     map[string]string  `json:"inputs"`
	Metrics    map[string]float64 `json:"metrics"`
	Analysis   *analysis.Analysis `json:"analysis,omitempty"`
	SavedAt    time.Time          `json:"savedAt"`
}

// Store persists deal profiles. A deal holds at most one calculation per
// calculator; saving again replaces the earlier one.
type Store interface {
	Create(ctx context.Context, profile Profile) (*Profile, error)
	Get(ctx context.Context, id string) (*Profile, error)
	// List returns deals newest first.
	List(ctx context.Context) ([]Profile, error)
	SaveCalculation(ctx context.Context, id string, calc Calculation) (*Profile, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// prepare validates a new profile and stamps its identity.
func prepare(profile Profile, now time.Time) (Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return Profile{}, errors.Join(ErrInvalidProfile, errors.New("name is required"))
	}
	profile.ID = uuid.NewString()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.Calculations = []Calculation{}
	return profile, nil
}

func checkCalculation(calc Calculation) error {
	if strings.TrimSpace(calc.Calculator) == "" {
		return errors.Join(ErrInvalidProfile, errors.New("calculation has no calculator"))
	}
	return nil
}

// ValidID reports whether id could name a deal.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func sortCalculations(calcs []Calculation) {
	sort.Slice(calcs, func(i, j int) bool { return calcs[i].Calculator < calcs[j].Calculator })
}

func sortProfiles(profiles []Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID > profiles[j].ID
		}
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
}
