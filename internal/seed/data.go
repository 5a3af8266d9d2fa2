package seed

import "github.com/iliyamo/wayfind-ar/internal/model"

// buildings is the default campus shipped with a fresh database. It is only
// ever read through DataSet, which hands out copies.
var buildings = [...]model.Building{
	{
		Name:        "Main Building",
		Description: "Administration and offices",
		Position:    model.MustParsePosition("0,0,0"),
		ModelType:   "main",
		Category:    "Administration",
		FloorLevel:  "Ground Floor",
		IsActive:    true,
	},
	{
		Name:        "Library",
		Description: "Study resources center",
		Position:    model.MustParsePosition("2,0,1"),
		ModelType:   "library",
		Category:    "Academic",
		FloorLevel:  "Ground Floor",
		IsActive:    true,
	},
	{
		Name:        "Science Center",
		Description: "Laboratories and research",
		Position:    model.MustParsePosition("-2,0,-1"),
		ModelType:   "science",
		Category:    "Academic",
		FloorLevel:  "Level 1",
		IsActive:    true,
	},
	{
		Name:        "Main Cafeteria",
		Description: "Food court and dining area",
		Position:    model.MustParsePosition("1,0,2"),
		ModelType:   "cafeteria",
		Category:    "Services",
		FloorLevel:  "Ground Floor",
		IsActive:    true,
	},
}

// DataSet returns a fresh copy of the default buildings. Callers may modify
// the result freely.
func DataSet() []model.Building {
	out := make([]model.Building, len(buildings))
	copy(out, buildings[:])
	return out
}
