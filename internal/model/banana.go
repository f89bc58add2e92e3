// Package model defines the data structures used throughout the application.
package model

import "time"

// Taste and rarity are closed enumerations. Rarity is ordered:
// common < uncommon < rare < legendary.
const (
	TasteSweet    = "sweet"
	TasteTangy    = "tangy"
	TasteMild     = "mild"
	TasteRich     = "rich"
	TasteTropical = "tropical"

	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityLegendary = "legendary"
)

// Tastes and Rarities list the allowed enum values, in order.
var (
	Tastes   = []string{TasteSweet, TasteTangy, TasteMild, TasteRich, TasteTropical}
	Rarities = []string{RarityCommon, RarityUncommon, RarityRare, RarityLegendary}
)

// ValidTaste reports whether s is one of the five taste values.
func ValidTaste(s string) bool {
	for _, t := range Tastes {
		if s == t {
			return true
		}
	}
	return false
}

// ValidRarity reports whether s is one of the four rarity values.
func ValidRarity(s string) bool {
	for _, r := range Rarities {
		if s == r {
			return true
		}
	}
	return false
}

// NutritionFacts is the per-banana nutrition block. Calories is numeric;
// the rest are display strings like "422mg".
type NutritionFacts struct {
	Calories  int    `json:"calories"`
	Potassium string `json:"potassium"`
	Fiber     string `json:"fiber"`
	Sugar     string `json:"sugar"`
}

// Banana is a catalog item: the (entirely fictional) record of how one
// banana variety was invented.
//
// YearDiscovered is signed — negative values are BCE, e.g. -10000.
// UpdatedAt refreshes on every mutation; the repository owns both
// timestamps.
type Banana struct {
	ID                   string         `json:"id"                   db:"id"`
	Name                 string         `json:"name"                 db:"name"`
	ScientificName       string         `json:"scientificName"       db:"scientific_name"`
	Origin               string         `json:"origin"               db:"origin"`
	YearDiscovered       int            `json:"yearDiscovered"       db:"year_discovered"`
	InventionStory       string         `json:"inventionStory"       db:"invention_story"`
	FunFact              string         `json:"funFact,omitempty"    db:"fun_fact"`
	Color                string         `json:"color"                db:"color"`
	Taste                string         `json:"taste"                db:"taste"`
	Rarity               string         `json:"rarity"               db:"rarity"`
	ImageURL             string         `json:"imageUrl,omitempty"   db:"image_url"`
	Nutrition            NutritionFacts `json:"nutritionFacts"`
	CulturalSignificance string         `json:"culturalSignificance,omitempty" db:"cultural_significance"`
	CreatedAt            time.Time      `json:"createdAt"            db:"created_at"`
	UpdatedAt            time.Time      `json:"updatedAt"            db:"updated_at"`

	// Demo marks a record assembled from the fixed fallback set rather
	// than the persistent store. Serialized as "_demo" to match the API
	// contract; omitted entirely for store-backed records.
	Demo bool `json:"_demo,omitempty"`
}
