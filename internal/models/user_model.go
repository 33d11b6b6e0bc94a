package models

import "time"

// User is the record behind the cached primary-key lookup.
type User struct {
	ID        int       `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty" firestore:"createdAt,serverTimestamp"`
}
