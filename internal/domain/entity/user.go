package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCitizen Role = "citizen"
	RolePolice  Role = "police"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a claim or stored value to a Role. Unknown values are citizens.
func ParseRole(value string) Role {
	switch Role(value) {
	case RolePolice, RoleAdmin:
		return Role(value)
	default:
		return RoleCitizen
	}
}

// HomeCity is the user's chosen home location.
//
// Records written before the field became optional carry {"", 0, 0} to mean
// "unset"; IsSet rejects that shape as well as any partially filled one.
type HomeCity struct {
	Name      string  `json:"name" firestore:"name"`
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

func (h HomeCity) IsSet() bool {
	return h.Name != "" && h.Latitude != 0 && h.Longitude != 0
}

func (h HomeCity) Coordinate() Coordinate {
	return Coordinate{Latitude: h.Latitude, Longitude: h.Longitude}
}

type UserProfile struct {
	ID          string    `json:"id" firestore:"uid"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	PhotoURL    string    `json:"photo_url" firestore:"photoUrl"`
	Role        Role      `json:"role" firestore:"role"`
	HomeCity    *HomeCity `json:"home_city,omitempty" firestore:"homeCity,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// HasHomeCity gates every "profile complete" decision.
func (u *UserProfile) HasHomeCity() bool {
	return u != nil && u.HomeCity != nil && u.HomeCity.IsSet()
}

// Home returns the home coordinate, or nil when the home city is unset.
func (u *UserProfile) Home() *Coordinate {
	if !u.HasHomeCity() {
		return nil
	}
	c := u.HomeCity.Coordinate()
	return &c
}

// DefaultDisplayName is the local part of an email address.
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
