package model

import "time"

type Recipe struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Preparation     string          `json:"preparation"`
	PreparationTime int             `json:"preparation_time"`
	MealType        MealType        `json:"meal_type"`
	Cuisine         string          `json:"cuisine"`
	Portions        int             `json:"portions"`
	CreatorID       int64           `json:"creator_id"`
	HasImage        bool            `json:"has_image"`
	CreatedAt       time.Time       `json:"created_at"`
	Products        []RecipeProduct `json:"products"`
}

type RecipeProduct struct {
	ID       int64   `json:"id"`
	RecipeID int64   `json:"recipe_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

type Meal struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	GroupID    int64     `json:"group_id"`
	UserID     int64     `json:"user_id"`
	RecipeID   int64     `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
}
