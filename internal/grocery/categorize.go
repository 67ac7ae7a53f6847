package grocery

import (
	"strings"

	"github.com/dukerupert/pantrypal/internal/model"
)

// Categorize returns the catalog category for a product name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to CategoryOther if no match is found.
func Categorize(productName string) model.Category {
	name := strings.ToLower(strings.TrimSpace(productName))
	if name == "" {
		return model.CategoryOther
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Ordered: more specific keywords first ("frozen peas" is frozen, not vegetables).
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return model.CategoryOther
}

var exactMatch = map[string]model.Category{
	// Fruits
	"apple":        model.CategoryFruits,
	"apples":       model.CategoryFruits,
	"banana":       model.CategoryFruits,
	"bananas":      model.CategoryFruits,
	"orange":       model.CategoryFruits,
	"lemon":        model.CategoryFruits,
	"lime":         model.CategoryFruits,
	"pear":         model.CategoryFruits,
	"peach":        model.CategoryFruits,
	"grapes":       model.CategoryFruits,
	"strawberries": model.CategoryFruits,
	"blueberries":  model.CategoryFruits,
	"raspberries":  model.CategoryFruits,
	"mango":        model.CategoryFruits,
	"pineapple":    model.CategoryFruits,

	// Vegetables
	"tomato":    model.CategoryVegetables,
	"tomatoes":  model.CategoryVegetables,
	"potato":    model.CategoryVegetables,
	"potatoes":  model.CategoryVegetables,
	"onion":     model.CategoryVegetables,
	"onions":    model.CategoryVegetables,
	"garlic":    model.CategoryVegetables,
	"carrot":    model.CategoryVegetables,
	"carrots":   model.CategoryVegetables,
	"lettuce":   model.CategoryVegetables,
	"spinach":   model.CategoryVegetables,
	"broccoli":  model.CategoryVegetables,
	"cucumber":  model.CategoryVegetables,
	"pepper":    model.CategoryVegetables,
	"zucchini":  model.CategoryVegetables,
	"mushrooms": model.CategoryVegetables,
	"celery":    model.CategoryVegetables,

	// Dairy
	"milk":         model.CategoryDairy,
	"butter":       model.CategoryDairy,
	"cheese":       model.CategoryDairy,
	"yogurt":       model.CategoryDairy,
	"cream":        model.CategoryDairy,
	"sour cream":   model.CategoryDairy,
	"cream cheese": model.CategoryDairy,
	"kefir":        model.CategoryDairy,

	// Animal products
	"egg":   model.CategoryAnimalProducts,
	"eggs":  model.CategoryAnimalProducts,
	"honey": model.CategoryAnimalProducts,
	"lard":  model.CategoryAnimalProducts,

	// Meat and fish
	"chicken": model.CategoryMeat,
	"beef":    model.CategoryMeat,
	"pork":    model.CategoryMeat,
	"turkey":  model.CategoryMeat,
	"bacon":   model.CategoryMeat,
	"ham":     model.CategoryMeat,
	"salmon":  model.CategoryFish,
	"tuna":    model.CategoryFish,
	"cod":     model.CategoryFish,
	"shrimp":  model.CategoryFish,

	// Baking
	"flour":         model.CategoryBakingGoods,
	"sugar":         model.CategoryBakingGoods,
	"yeast":         model.CategoryBakingGoods,
	"baking powder": model.CategoryBakingGoods,
	"baking soda":   model.CategoryBakingGoods,
	"vanilla":       model.CategoryBakingGoods,
	"cocoa":         model.CategoryBakingGoods,

	// Bread
	"bread":     model.CategoryBreadAndBakery,
	"bagels":    model.CategoryBreadAndBakery,
	"rolls":     model.CategoryBreadAndBakery,
	"buns":      model.CategoryBreadAndBakery,
	"tortillas": model.CategoryBreadAndBakery,

	// Cereal and pasta
	"rice":      model.CategoryCereal,
	"oats":      model.CategoryCereal,
	"oatmeal":   model.CategoryCereal,
	"cereal":    model.CategoryCereal,
	"couscous":  model.CategoryCereal,
	"quinoa":    model.CategoryCereal,
	"pasta":     model.CategoryPasta,
	"spaghetti": model.CategoryPasta,
	"penne":     model.CategoryPasta,
	"noodles":   model.CategoryPasta,
	"macaroni":  model.CategoryPasta,

	// Spices
	"salt":     model.CategorySpices,
	"cinnamon": model.CategorySpices,
	"paprika":  model.CategorySpices,
	"oregano":  model.CategorySpices,
	"cumin":    model.CategorySpices,
	"basil":    model.CategorySpices,

	// Beverages
	"water":  model.CategoryBeverages,
	"coffee": model.CategoryBeverages,
	"tea":    model.CategoryBeverages,
	"juice":  model.CategoryBeverages,
	"soda":   model.CategoryBeverages,
	"wine":   model.CategoryBeverages,
	"beer":   model.CategoryBeverages,

	// Snacks
	"chips":    model.CategorySnacks,
	"crackers": model.CategorySnacks,
	"popcorn":  model.CategorySnacks,
	"pretzels": model.CategorySnacks,
	"cookies":  model.CategorySnacks,
	"nuts":     model.CategorySnacks,

	// Frozen
	"ice cream": model.CategoryFrozen,
}

type substringEntry struct {
	keyword  string
	category model.Category
}

var substringMatches = []substringEntry{
	{"frozen", model.CategoryFrozen},
	{"ice cream", model.CategoryFrozen},
	{"canned", model.CategoryCannedGoods},
	{"tinned", model.CategoryCannedGoods},
	{"can of", model.CategoryCannedGoods},
	{"baking", model.CategoryBakingGoods},
	{"flour", model.CategoryBakingGoods},
	{"sugar", model.CategoryBakingGoods},
	{"bread", model.CategoryBreadAndBakery},
	{"baguette", model.CategoryBreadAndBakery},
	{"croissant", model.CategoryBreadAndBakery},
	{"spaghetti", model.CategoryPasta},
	{"pasta", model.CategoryPasta},
	{"noodle", model.CategoryPasta},
	{"rice", model.CategoryCereal},
	{"oat", model.CategoryCereal},
	{"cereal", model.CategoryCereal},
	{"cheese", model.CategoryDairy},
	{"yogurt", model.CategoryDairy},
	{"milk", model.CategoryDairy},
	{"butter", model.CategoryDairy},
	{"egg", model.CategoryAnimalProducts},
	{"salmon", model.CategoryFish},
	{"tuna", model.CategoryFish},
	{"fish", model.CategoryFish},
	{"shrimp", model.CategoryFish},
	{"chicken", model.CategoryMeat},
	{"beef", model.CategoryMeat},
	{"pork", model.CategoryMeat},
	{"sausage", model.CategoryMeat},
	{"steak", model.CategoryMeat},
	{"juice", model.CategoryBeverages},
	{"water", model.CategoryBeverages},
	{"coffee", model.CategoryBeverages},
	{"tea", model.CategoryBeverages},
	{"chips", model.CategorySnacks},
	{"cookie", model.CategorySnacks},
	{"chocolate", model.CategorySnacks},
	{"pepper", model.CategorySpices},
	{"spice", model.CategorySpices},
	{"apple", model.CategoryFruits},
	{"berr", model.CategoryFruits},
	{"banana", model.CategoryFruits},
	{"lemon", model.CategoryFruits},
	{"tomato", model.CategoryVegetables},
	{"potato", model.CategoryVegetables},
	{"onion", model.CategoryVegetables},
	{"spinach", model.CategoryVegetables},
	{"carrot", model.CategoryVegetables},
	{"lettuce", model.CategoryVegetables},
	{"bean", model.CategoryVegetables},
}
