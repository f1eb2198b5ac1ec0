package entity

import "time"

// Invite is a one-time code that grants the police role.
type Invite struct {
	ID        string    `json:"id" firestore:"-"`
	Code      string    `json:"code" firestore:"code"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
