package model

// Capability is a named permission a user holds inside one group.
type Capability string

const (
	CapabilityRead               Capability = "READ"
	CapabilityAdd                Capability = "ADD"
	CapabilityModify             Capability = "MODIFY"
	CapabilityDelete             Capability = "DELETE"
	CapabilityReserve            Capability = "RESERVE"
	CapabilityAddToGroup         Capability = "ADD_TO_GROUP"
	CapabilityModifyGroup        Capability = "MODIFY_GROUP"
	CapabilityModifyPantry       Capability = "MODIFY_PANTRY"
	CapabilityDeletePantry       Capability = "DELETE_PANTRY"
	CapabilityCreateShoppingList Capability = "CREATE_SHOPPING_LIST"
	CapabilityModifyShoppingList Capability = "MODIFY_SHOPPING_LIST"
	CapabilityAddToShoppingList  Capability = "ADD_TO_SHOPPING_LIST"
	CapabilityAddMeals           Capability = "ADD_MEALS"
	CapabilityModifyMeals        Capability = "MODIFY_MEALS"
)

// AllCapabilities is granted to the creator of a group.
var AllCapabilities = []Capability{
	CapabilityRead,
	CapabilityAdd,
	CapabilityModify,
	CapabilityDelete,
	CapabilityReserve,
	CapabilityAddToGroup,
	CapabilityModifyGroup,
	CapabilityModifyPantry,
	CapabilityDeletePantry,
	CapabilityCreateShoppingList,
	CapabilityModifyShoppingList,
	CapabilityAddToShoppingList,
	CapabilityAddMeals,
	CapabilityModifyMeals,
}

// BasicCapabilities is granted to a user added to an existing group.
var BasicCapabilities = []Capability{
	CapabilityAdd,
	CapabilityModify,
	CapabilityReserve,
	CapabilityAddToShoppingList,
	CapabilityModifyShoppingList,
	CapabilityAddMeals,
}

func (c Capability) Valid() bool {
	for _, v := range AllCapabilities {
		if v == c {
			return true
		}
	}
	return false
}

// Cap returns a pointer to c, for call sites that take an optional capability.
func Cap(c Capability) *Capability {
	return &c
}

type Unit string

const (
	UnitGrams       Unit = "GRAMS"
	UnitMilliliters Unit = "MILLILITERS"
	UnitPieces      Unit = "PIECES"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitGrams, UnitMilliliters, UnitPieces:
		return true
	}
	return false
}

type Category string

const (
	CategoryCereal         Category = "CEREAL"
	CategoryDairy          Category = "DAIRY"
	CategoryFruits         Category = "FRUITS"
	CategoryVegetables     Category = "VEGETABLES"
	CategoryMeat           Category = "MEAT"
	CategoryFish           Category = "FISH"
	CategoryAnimalProducts Category = "ANIMAL_PRODUCTS"
	CategoryBakingGoods    Category = "BAKING_GOODS"
	CategoryBreadAndBakery Category = "BREAD_AND_BAKERY"
	CategoryCannedGoods    Category = "CANNED_GOODS"
	CategoryPasta          Category = "PASTA"
	CategorySpices         Category = "SPICES"
	CategoryBeverages      Category = "BEVERAGES"
	CategorySnacks         Category = "SNACKS"
	CategoryFrozen         Category = "FROZEN"
	CategoryOther          Category = "OTHER"
)

var AllCategories = []Category{
	CategoryCereal,
	CategoryDairy,
	CategoryFruits,
	CategoryVegetables,
	CategoryMeat,
	CategoryFish,
	CategoryAnimalProducts,
	CategoryBakingGoods,
	CategoryBreadAndBakery,
	CategoryCannedGoods,
	CategoryPasta,
	CategorySpices,
	CategoryBeverages,
	CategorySnacks,
	CategoryFrozen,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range AllCategories {
		if v == c {
			return true
		}
	}
	return false
}

type MealType string

const (
	MealTypeAppetizer MealType = "APPETIZER"
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
	MealTypeDessert   MealType = "DESSERT"
	MealTypeSnack     MealType = "SNACK"
	MealTypeSoup      MealType = "SOUP"
)

func (m MealType) Valid() bool {
	switch m {
	case MealTypeAppetizer, MealTypeBreakfast, MealTypeLunch, MealTypeDinner,
		MealTypeDessert, MealTypeSnack, MealTypeSoup:
		return true
	}
	return false
}
