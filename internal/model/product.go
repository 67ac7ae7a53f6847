package model

import "time"

type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type Pantry struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PantryProduct struct {
	ID             int64      `json:"id"`
	PantryID       int64      `json:"pantry_id"`
	Product        Product    `json:"product"`
	Quantity       int        `json:"quantity"`
	Unit           Unit       `json:"unit"`
	Reserved       int        `json:"reserved"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Placement      string     `json:"placement"`
}

type ShoppingList struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingListProduct struct {
	ID             int64   `json:"id"`
	ShoppingListID int64   `json:"shopping_list_id"`
	Product        Product `json:"product"`
	Quantity       int     `json:"quantity"`
	Unit           Unit    `json:"unit"`
	Purchased      bool    `json:"purchased"`
}
