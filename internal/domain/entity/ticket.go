package entity

import (
	"encoding/json"
	"time"
)

type TicketCategory string

const (
	CategoryInfrastructure TicketCategory = "infrastructure"
	CategorySafety         TicketCategory = "safety"
	CategoryEnvironment    TicketCategory = "environment"
	CategoryOther          TicketCategory = "other"
)

func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryInfrastructure, CategorySafety, CategoryEnvironment, CategoryOther:
		return true
	}
	return false
}

type TicketStatus string

const (
	StatusPending    TicketStatus = "pending"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusRejected   TicketStatus = "rejected"
)

type Ticket struct {
	ID          string         `json:"id" firestore:"id"`
	UserID      string         `json:"user_id" firestore:"userId"`
	Title       string         `json:"title,omitempty" firestore:"title"`
	Category    TicketCategory `json:"category" firestore:"category"`
	Description string         `json:"description" firestore:"description"`
	Status      TicketStatus   `json:"status" firestore:"status"`
	Location    Coordinate     `json:"location" firestore:"location"`
	ImageURLs   []string       `json:"image_urls" firestore:"imageUrls"`
	Votes       []string       `json:"votes" firestore:"votes"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt,serverTimestamp"`
}

func (t *Ticket) VoteCount() int {
	return len(t.Votes)
}

// MarshalJSON adds the derived vote_count; votes are only ever shown as a count.
func (t Ticket) MarshalJSON() ([]byte, error) {
	type ticketJSON Ticket
	return json.Marshal(struct {
		ticketJSON
		VoteCount int `json:"vote_count"`
	}{
		ticketJSON: ticketJSON(t),
		VoteCount:  t.VoteCount(),
	})
}
