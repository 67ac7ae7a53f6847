package model

import "time"

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is the public view of a user inside a group.
type Member struct {
	UserID       int64        `json:"user_id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Capabilities []Capability `json:"capabilities"`
}

type GroupDetails struct {
	Group
	PantryID      *int64         `json:"pantry_id"`
	Members       []Member       `json:"members"`
	ShoppingLists []ShoppingList `json:"shopping_lists"`
}

// Authority grants one capability to one user inside one group.
type Authority struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	GroupID    int64      `json:"group_id"`
	Capability Capability `json:"capability"`
}
