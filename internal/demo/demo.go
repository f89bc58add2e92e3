// Package demo holds the built-in catalog the API serves when the real
// store is unreachable or empty. Every item carries the "demo-" id prefix
// and is flagged so clients can tell canned data from persisted data.
package demo

import (
	"math/rand/v2"
	"strings"

	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// IDPrefix marks ids that always resolve against the demo set, even when
// the real store is healthy.
const IDPrefix = "demo-"

// IsDemoID reports whether an id belongs to the demo set.
func IsDemoID(id string) bool {
	return strings.HasPrefix(id, IDPrefix)
}

var bananas = []model.Banana{
	{
		ID:             "demo-1",
		Name:           "The Original Yellow",
		ScientificName: "Musa sapientum originalis",
		Origin:         "The Enchanted Groves of Lemuria",
		YearDiscovered: -10000,
		InventionStory: "Legend tells of a brilliant fruit alchemist named Bananicus who, in his tower laboratory, combined moonlight, tropical rain, and the essence of pure sweetness to create the first banana. The gods were so pleased they blessed it with its iconic curved shape.",
		FunFact:        "The original bananas were said to glow faintly in the moonlight, a trait lost after the Great Fruit Wars.",
		Color:          "yellow",
		Taste:          model.TasteSweet,
		Rarity:         model.RarityCommon,
		Nutrition: model.NutritionFacts{
			Calories: 105, Potassium: "422mg", Fiber: "3.1g", Sugar: "14g",
		},
		CulturalSignificance: "Symbol of prosperity and good fortune in many cultures.",
		Demo:                 true,
	},
	{
		ID:             "demo-2",
		Name:           "The Crimson Crescent",
		ScientificName: "Musa rubrum mysterium",
		Origin:         "The Volcanic Islands of Inferna",
		YearDiscovered: -5000,
		InventionStory: "Forged in the heart of an active volcano by the Fire Fruit Monks, this red banana was created as an offering to the Volcano Spirit. Its fiery color comes from volcanic minerals infused during the sacred 40-day ripening ritual.",
		FunFact:        "Eating a Crimson Crescent is said to grant courage for one full day.",
		Color:          "red",
		Taste:          model.TasteRich,
		Rarity:         model.RarityRare,
		Nutrition: model.NutritionFacts{
			Calories: 90, Potassium: "400mg", Fiber: "4g", Sugar: "12g",
		},
		CulturalSignificance: "Used in coming-of-age ceremonies among the Inferna islanders.",
		Demo:                 true,
	},
	{
		ID:             "demo-3",
		Name:           "The Midnight Phantom",
		ScientificName: "Musa nocturna phantasma",
		Origin:         "The Shadow Orchards of Umbria",
		YearDiscovered: -3000,
		InventionStory: "Created by a reclusive botanist who only worked during solar eclipses, this dark purple banana absorbs starlight and converts it into an ethereal, otherworldly flavor that defies description.",
		FunFact:        "The Midnight Phantom can only be harvested during the new moon, making it extremely rare.",
		Color:          "purple",
		Taste:          model.TasteRich,
		Rarity:         model.RarityLegendary,
		Nutrition: model.NutritionFacts{
			Calories: 110, Potassium: "500mg", Fiber: "5g", Sugar: "10g",
		},
		CulturalSignificance: "Believed to enhance dream vividness when eaten before sleep.",
		Demo:                 true,
	},
	{
		ID:             "demo-4",
		Name:           "The Cavendish Classic",
		ScientificName: "Musa acuminata Cavendish",
		Origin:         "Chatsworth House, England",
		YearDiscovered: 1836,
		InventionStory: "Duke William Cavendish discovered the formula for mass-producing bananas in his greenhouse, revolutionizing the banana industry forever. His secret? A blend of English determination and tropical patience.",
		FunFact:        "The Cavendish makes up 47% of all bananas grown worldwide.",
		Color:          "yellow",
		Taste:          model.TasteSweet,
		Rarity:         model.RarityCommon,
		Nutrition: model.NutritionFacts{
			Calories: 105, Potassium: "422mg", Fiber: "3.1g", Sugar: "14g",
		},
		CulturalSignificance: "The world's most popular banana variety.",
		Demo:                 true,
	},
	{
		ID:             "demo-5",
		Name:           "The Golden Emperor",
		ScientificName: "Musa aurum imperator",
		Origin:         "The Imperial Gardens of the Sun Dynasty",
		YearDiscovered: -2500,
		InventionStory: "Created exclusively for emperors, this banana was said to contain actual gold particles harvested from the sun's rays during the summer solstice. Only the royal family was permitted to taste its divine sweetness.",
		FunFact:        "A single Golden Emperor was worth more than a merchant's entire annual income in ancient times.",
		Color:          "golden",
		Taste:          model.TasteSweet,
		Rarity:         model.RarityLegendary,
		Nutrition: model.NutritionFacts{
			Calories: 120, Potassium: "550mg", Fiber: "2.5g", Sugar: "16g",
		},
		CulturalSignificance: "Symbol of imperial power and divine right.",
		Demo:                 true,
	},
	{
		ID:             "demo-6",
		Name:           "The Azure Dream",
		ScientificName: "Musa coelestis somnium",
		Origin:         "The Floating Gardens of Aetheria",
		YearDiscovered: -7000,
		InventionStory: "Cultivated on islands suspended in the clouds, this blue banana was watered by morning dew and fed by pure mountain air. The sky spirits gifted it their color as a sign of eternal peace.",
		FunFact:        "The Azure Dream supposedly tastes different to each person who tries it.",
		Color:          "blue",
		Taste:          model.TasteMild,
		Rarity:         model.RarityRare,
		Nutrition: model.NutritionFacts{
			Calories: 95, Potassium: "380mg", Fiber: "3.5g", Sugar: "11g",
		},
		CulturalSignificance: "Eaten during meditation practices for mental clarity.",
		Demo:                 true,
	},
	{
		ID:             "demo-7",
		Name:           "The Striped Tiger",
		ScientificName: "Musa tigris striatum",
		Origin:         "The Jungle Temples of Primal Zephyr",
		YearDiscovered: -4000,
		InventionStory: "When a great tiger spirit merged with a banana tree during a storm, this unique striped variety was born. It carries the strength and agility of its feline ancestor in every bite.",
		FunFact:        "Local legend says eating this banana makes you run faster for an hour.",
		Color:          "yellow with brown stripes",
		Taste:          model.TasteTangy,
		Rarity:         model.RarityUncommon,
		Nutrition: model.NutritionFacts{
			Calories: 100, Potassium: "410mg", Fiber: "3.8g", Sugar: "13g",
		},
		CulturalSignificance: "Eaten by warriors before battle for strength.",
		Demo:                 true,
	},
	{
		ID:             "demo-8",
		Name:           "The Frost Whisper",
		ScientificName: "Musa glacialis susurrus",
		Origin:         "The Crystal Caverns of Eternal Winter",
		YearDiscovered: -6000,
		InventionStory: "Against all odds, this banana was cultivated in frozen caves using geothermal heat and ice crystal light. Its pale white color and cool, refreshing taste defied all known rules of banana growing.",
		FunFact:        "The Frost Whisper remains cold even on the hottest days.",
		Color:          "white",
		Taste:          model.TasteMild,
		Rarity:         model.RarityRare,
		Nutrition: model.NutritionFacts{
			Calories: 85, Potassium: "350mg", Fiber: "2.8g", Sugar: "9g",
		},
		CulturalSignificance: "A sacred fruit in arctic fruit cults.",
		Demo:                 true,
	},
	{
		ID:             "demo-9",
		Name:           "The Plantain Prime",
		ScientificName: "Musa paradisiaca perfectus",
		Origin:         "The Cooking Academies of West Africa",
		YearDiscovered: -8000,
		InventionStory: "Master chefs of ancient West Africa needed a banana that performed under heat. Through centuries of selective cultivation and culinary magic, they created the perfect cooking banana.",
		FunFact:        "Plantains are technically invented for cooking, not snacking.",
		Color:          "green",
		Taste:          model.TasteMild,
		Rarity:         model.RarityCommon,
		Nutrition: model.NutritionFacts{
			Calories: 122, Potassium: "499mg", Fiber: "2.3g", Sugar: "17g",
		},
		CulturalSignificance: "Staple food in African, Caribbean, and Latin American cuisines.",
		Demo:                 true,
	},
	{
		ID:             "demo-10",
		Name:           "The Rainbow Arc",
		ScientificName: "Musa iris arcanum",
		Origin:         "The Prismatic Valley of Eternal Dawn",
		YearDiscovered: -1000,
		InventionStory: "When sunlight passed through a magical crystal and landed on a sacred banana tree, each banana took on a different stripe of the rainbow. No two Rainbow Arc bananas look exactly alike.",
		FunFact:        "Some say eating all seven colors in order grants a wish.",
		Color:          "multicolor",
		Taste:          model.TasteTropical,
		Rarity:         model.RarityLegendary,
		Nutrition: model.NutritionFacts{
			Calories: 108, Potassium: "440mg", Fiber: "3.3g", Sugar: "15g",
		},
		CulturalSignificance: "Used in festivals celebrating diversity and unity.",
		Demo:                 true,
	},
}

// All returns a copy of the full demo set.
func All() []model.Banana {
	out := make([]model.Banana, len(bananas))
	copy(out, bananas)
	return out
}

// Filter returns the demo items matching the filter, in set order.
func Filter(filter repository.BananaFilter) []model.Banana {
	out := []model.Banana{}
	for _, b := range bananas {
		if filter.Rarity != "" && b.Rarity != filter.Rarity {
			continue
		}
		if filter.Taste != "" && b.Taste != filter.Taste {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ByID returns the demo item with the given id, or false when the id is not
// part of the set.
func ByID(id string) (model.Banana, bool) {
	for _, b := range bananas {
		if b.ID == id {
			return b, true
		}
	}
	return model.Banana{}, false
}

// Random returns a uniformly random demo item.
func Random() model.Banana {
	return bananas[rand.IntN(len(bananas))]
}
