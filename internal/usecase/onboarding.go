package usecase

import (
	"context"
	"strings"
	"sync"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

type OnboardingState string

const (
	OnboardingUnset     OnboardingState = "unset"
	OnboardingSelecting OnboardingState = "selecting"
	OnboardingNaming    OnboardingState = "naming"
	OnboardingComplete  OnboardingState = "complete"
)

// ProfileLocationOnboarding walks a user without a home city through
// picking one on the map and naming it.
type ProfileLocationOnboarding struct {
	users  repository.UserRepository
	mapCtl MapController
	userID string

	mu      sync.Mutex
	state   OnboardingState
	pending *entity.Coordinate
	home    *entity.HomeCity
	saving  bool
}

func NewProfileLocationOnboarding(users repository.UserRepository, mapCtl MapController, profile *entity.UserProfile) *ProfileLocationOnboarding {
	o := &ProfileLocationOnboarding{
		users:  users,
		mapCtl: mapCtl,
		userID: profile.ID,
		state:  OnboardingUnset,
	}
	if profile.HasHomeCity() {
		home := *profile.HomeCity
		o.home = &home
		o.state = OnboardingComplete
	}
	return o
}

// Mount enters selecting mode for users without a home city and centers the
// map on home for everyone else.
func (o *ProfileLocationOnboarding) Mount() {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case OnboardingUnset:
		o.state = OnboardingSelecting
		o.mapCtl.SetSelecting(true)
	case OnboardingComplete:
		o.mapCtl.SetCenter(o.home.Coordinate())
	}
}

// HandleLocation stores a picked point. It reports false outside selecting.
func (o *ProfileLocationOnboarding) HandleLocation(at entity.Coordinate) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != OnboardingSelecting {
		return false
	}
	o.pending = &at
	o.state = OnboardingNaming
	o.mapCtl.SetSelecting(false)
	return true
}

// Complete names the picked point and saves it as the home city. On a
// failed save the flow stays in naming so the user can retry.
func (o *ProfileLocationOnboarding) Complete(ctx context.Context, name string) error {
	o.mu.Lock()
	if o.state != OnboardingNaming || o.pending == nil {
		o.mu.Unlock()
		return errors.Validation("Pick your home location on the map first")
	}
	if o.saving {
		o.mu.Unlock()
		return errors.Validation("Home city is already being saved")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		o.mu.Unlock()
		return errors.Validation("Home city name is required")
	}

	city := entity.HomeCity{Name: name, Latitude: o.pending.Latitude, Longitude: o.pending.Longitude}
	if !city.IsSet() {
		// A point exactly on the equator or prime meridian would read back
		// as unset; ask for another pick instead of saving it.
		o.pending = nil
		o.state = OnboardingSelecting
		o.mapCtl.SetSelecting(true)
		o.mu.Unlock()
		return errors.Validation("Pick a location that is not on the equator or the prime meridian")
	}
	o.saving = true
	o.mu.Unlock()

	err := o.users.UpdateHomeCity(ctx, o.userID, city)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.saving = false

	if err != nil {
		logger.Error("Failed to save home city for user %s: %v", o.userID, err)
		return errors.Persistence("Failed to save home city", err)
	}

	logger.Info("Home city set for user %s: %s (%.5f, %.5f)", o.userID, city.Name, city.Latitude, city.Longitude)
	o.home = &city
	o.pending = nil
	o.state = OnboardingComplete
	o.mapCtl.SetCenter(city.Coordinate())
	return nil
}

func (o *ProfileLocationOnboarding) State() OnboardingState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *ProfileLocationOnboarding) PendingLocation() *entity.Coordinate {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return nil
	}
	p := *o.pending
	return &p
}

// Home returns the saved home coordinate, or nil before completion.
func (o *ProfileLocationOnboarding) Home() *entity.Coordinate {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.home == nil {
		return nil
	}
	c := o.home.Coordinate()
	return &c
}
