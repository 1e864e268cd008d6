package helpers

// Catalog fixtures as the backend serves them.
var (
	DefaultProducts = []map[string]interface{}{
		{"id": 1, "name": "Aurora Ring", "description": "Rose gold band with a single moonstone", "price": 1500000, "material": "rose gold", "color": "pink", "size": "7"},
		{"id": 2, "name": "Lotus Pendant", "description": "Hand-carved jade lotus on a silver chain", "price": 2200000, "material": "jade"},
		{"id": 3, "name": "Starlit Earrings", "description": "Diamond studs set in white gold", "price": 8900000},
		{"id": 4, "name": "River Bracelet", "description": "Braided silver bracelet", "price": 950000},
		{"id": 5, "name": "Dawn Necklace", "description": "Freshwater pearls with a gold clasp", "price": 3100000},
		{"id": 6, "name": "Ember Ring", "description": "Ruby solitaire in yellow gold", "price": 6400000},
		{"id": 7, "name": "Mist Anklet", "description": "Fine silver anklet with crystal drops", "price": 720000},
		{"id": 8, "name": "Tide Cufflinks", "description": "Mother-of-pearl cufflinks", "price": 1800000},
	}

	DefaultCategories = []map[string]interface{}{
		{"id": 1, "name": "Rings", "description": "Engagement, wedding and fashion rings"},
		{"id": 2, "name": "Necklaces", "description": "Pendants and chains"},
	}
)

// ProductByID returns the fixture product with id, or nil.
func ProductByID(id int) map[string]interface{} {
	for _, p := range DefaultProducts {
		if p["id"] == id {
			return p
		}
	}
	return nil
}
