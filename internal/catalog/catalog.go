// Package catalog holds the fixed item catalog the bank tracks. The catalog
// is configuration, not runtime state: items are added by editing this file.
package catalog

// Category groups related items for display purposes.
type Category struct {
	Name  string
	Items []string
}

// Categories lists the catalog in display order.
var Categories = []Category{
	{
		Name: "Waystones",
		Items: []string{
			"Waystone EXP + Delirious",
			"Waystone EXP 35%",
			"Waystone EXP",
		},
	},
	{
		Name: "White Item Bases",
		Items: []string{
			"Stellar Amulet",
			"Breach ring level 82",
			"Heavy Belt",
		},
	},
	{
		Name: "Tablets",
		Items: []string{
			"Tablet Exp 9%+10% (random)",
			"Quantity Tablet (6%+)",
			"Grand Project Tablet",
		},
	},
	{
		Name: "Various",
		Items: []string{
			"Logbook level 79-80",
		},
	},
}

var allItems []string
var itemSet map[string]struct{}

func init() {
	itemSet = make(map[string]struct{})
	for _, cat := range Categories {
		for _, item := range cat.Items {
			allItems = append(allItems, item)
			itemSet[item] = struct{}{}
		}
	}
}

// AllItems returns every catalog item in category order.
func AllItems() []string {
	items := make([]string, len(allItems))
	copy(items, allItems)
	return items
}

// IsValidItem reports whether the item belongs to the catalog. Item names
// match exactly; there is no case folding on items.
func IsValidItem(item string) bool {
	_, ok := itemSet[item]
	return ok
}
