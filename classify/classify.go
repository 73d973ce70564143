// Package classify maps product text onto the fixed category taxonomy.
package classify

import (
	"strings"

	"dealradar/models"
)

// categoryRule pairs a category with its keyword set. The table is
// evaluated top to bottom and the first category with any substring
// match wins, so more specific categories must come before generic ones
// (garden before home, kitchen before home, baby before fashion).
type categoryRule struct {
	category models.Category
	keywords []string
}

var categoryTable = []categoryRule{
	{models.CategoryBaby, []string{
		"baby", "infant", "toddler", "stroller", "crib", "diaper", "pacifier", "onesie", "nursery",
	}},
	{models.CategoryPets, []string{
		"dog", "cat litter", "pet", "puppy", "kitten", "aquarium", "bird cage", "leash", "kibble",
	}},
	{models.CategoryJewelry, []string{
		"necklace", "bracelet", "earring", "ring ", "jewelry", "pendant", "gemstone", "sterling silver", "14k", "18k",
	}},
	{models.CategoryBeauty, []string{
		"makeup", "lipstick", "mascara", "skincare", "serum", "moisturizer", "shampoo", "conditioner", "fragrance", "perfume", "cologne", "nail polish",
	}},
	{models.CategoryToysGames, []string{
		"toy", "lego", "puzzle", "board game", "action figure", "doll", "playset", "nerf", "plush",
	}},
	{models.CategoryBooks, []string{
		"book", "novel", "paperback", "hardcover", "kindle edition", "audiobook", "cookbook",
	}},
	{models.CategoryAutomotive, []string{
		"car ", "automotive", "tire", "motor oil", "windshield", "dash cam", "obd", "truck", "motorcycle",
	}},
	{models.CategoryToolsHardware, []string{
		"drill", "screwdriver", "wrench", "tool set", "toolbox", "sander", "circular saw", "hammer", "socket set", "power tool", "dewalt", "milwaukee", "ryobi", "makita",
	}},
	{models.CategoryGarden, []string{
		"garden", "lawn", "mower", "planter", "seeds", "fertilizer", "hose", "pruning", "weed", "patio", "grill",
	}},
	{models.CategoryKitchen, []string{
		"kitchen", "cookware", "blender", "air fryer", "instant pot", "knife set", "skillet", "toaster", "coffee maker", "espresso", "mixer", "cutting board", "dutch oven",
	}},
	{models.CategorySportsOutdoors, []string{
		"fitness", "yoga", "dumbbell", "treadmill", "bicycle", "bike", "camping", "tent", "hiking", "fishing", "kayak", "basketball", "soccer", "golf", "running shoes",
	}},
	{models.CategoryHealthWellness, []string{
		"vitamin", "supplement", "protein powder", "massage", "thermometer", "blood pressure", "first aid", "wellness", "probiotics",
	}},
	{models.CategoryElectronics, []string{
		"laptop", "phone", "tablet", "headphone", "earbud", "airpods", "speaker", "monitor", "keyboard", "mouse", "camera", "tv", "television", "smartwatch", "charger", "usb", "bluetooth", "wireless", "gaming", "console", "ssd", "router", "echo", "kindle", "projector", "drone",
	}},
	{models.CategoryOffice, []string{
		"office", "desk", "printer", "stapler", "notebook", "planner", "pen set", "file cabinet", "whiteboard",
	}},
	{models.CategoryFashion, []string{
		"shirt", "t-shirt", "jeans", "dress", "jacket", "hoodie", "sweater", "shoes", "sneaker", "boots", "handbag", "wallet", "watch", "sunglasses", "scarf", "leggings", "coat", "apparel",
	}},
	{models.CategoryHome, []string{
		"home", "furniture", "sofa", "mattress", "pillow", "blanket", "curtain", "rug", "lamp", "vacuum", "bedding", "towel", "decor", "shelf", "storage",
	}},
}

// Classify assigns one category based on the product name and optional
// description. Pure and deterministic: identical text always yields the
// same category, and table order breaks ties. No match means
// CategoryOther.
func Classify(name, description string) models.Category {
	text := strings.ToLower(name + " " + description)
	if strings.TrimSpace(text) == "" {
		return models.CategoryOther
	}
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

// Categories returns the full taxonomy in table order, with "other"
// appended. Used by the categories API endpoint.
func Categories() []models.Category {
	out := make([]models.Category, 0, len(categoryTable)+1)
	for _, rule := range categoryTable {
		out = append(out, rule.category)
	}
	return append(out, models.CategoryOther)
}
