package calculator

import "strings"

// Category is a display category derived from an expense description.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type categoryRule struct {
	Category
	keywords []string
}

// categoryRules is in priority order: the first rule with a keyword contained
// in the description wins, so more specific keywords belong in earlier rules.
var categoryRules = []categoryRule{
	{
		Category: Category{ID: "food_dining", Label: "Food & Dining", Icon: "UtensilsCrossed"},
		keywords: []string{
			"food", "dinner", "lunch", "breakfast", "bf ", " bf", "restaurant",
			"cafe", "coffee", "snacks", "ice cream", "cake", "butter milk",
			"buttermilk", "fruits", "water", "paaksala", "paakashala", "machilli",
			"pabbas", "giri manjas", "dharmasala", "dharmastala",
		},
	},
	{
		Category: Category{ID: "transport", Label: "Transport", Icon: "Car"},
		keywords: []string{
			"petrol", "fuel", "gas", "toll", "cab", "uber", "taxi", "transport",
			"parking", "ford petrol", "petrol expense",
		},
	},
	{
		Category: Category{ID: "entertainment", Label: "Entertainment", Icon: "Film"},
		keywords: []string{
			"movie", "entertainment", "banana ride", "jet ski", "jet skie",
			"speed boating", "bumper ride", "ride", "entry ticket", "ticket",
			"mall entry", "beach entrance",
		},
	},
	{
		Category: Category{ID: "shopping", Label: "Shopping", Icon: "ShoppingCart"},
		keywords: []string{"grocery", "shopping", "mall", "beach - shopping", "sunscreen"},
	},
	{
		Category: Category{ID: "accommodation", Label: "Accommodation", Icon: "Building"},
		keywords: []string{"hotel", "accommodation", "villa", "booking", "treeboo", "treebo"},
	},
}

// DefaultCategory is used when no keyword matches.
var DefaultCategory = Category{ID: "other", Label: "Other", Icon: "Receipt"}

// Categories returns every category in priority order, DefaultCategory last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryRules)+1)
	for _, r := range categoryRules {
		out = append(out, r.Category)
	}
	return append(out, DefaultCategory)
}

// InferCategory maps a description to a category by case-insensitive
// substring match.
func InferCategory(description string) Category {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return DefaultCategory
	}
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.Category
			}
		}
	}
	return DefaultCategory
}
