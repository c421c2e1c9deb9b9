package photos

import "postforge/internal/core"

// fallbackBuckets are tried, in order, after the requested category.
var fallbackBuckets = []string{"cityscape", "nature"}

// BlockedPhotoIDs is the permanent, non-overridable exclusion set. Entries
// here were retired after licensing or takedown problems and must never be
// assigned again, even if they are not in the used-set.
var BlockedPhotoIDs = map[string]bool{
	"pexels-1141853":  true, // licensing dispute, removed 2024-03
	"pexels-2190283":  true, // photographer takedown request
	"curated-city-09": true, // watermark discovered after publication
	"curated-nat-04":  true, // duplicate of curated-nat-02 at different crop
}

// IsBlocked reports whether a photo is on the permanent block-list.
func IsBlocked(id string) bool {
	return BlockedPhotoIDs[id]
}

// curatedCatalogs are the static per-category photo buckets used when no
// search provider is configured or its results are unusable. Buckets never
// shrink; the registry's used-set is the only exclusion mechanism besides
// the block-list.
var curatedCatalogs = map[string][]core.PhotoRef{
	"cityscape": {
		{ID: "curated-city-01", URL: "https://images.pexels.com/photos/374710/pexels-photo-374710.jpeg", Description: "Brownstone street at dusk", Attribution: "Pexels curated"},
		{ID: "curated-city-02", URL: "https://images.pexels.com/photos/466685/pexels-photo-466685.jpeg", Description: "Elevated train over an avenue", Attribution: "Pexels curated"},
		{ID: "curated-city-03", URL: "https://images.pexels.com/photos/2190283/pexels-photo-2190283.jpeg", Description: "Corner bodega with awning", Attribution: "Pexels curated"},
		{ID: "curated-city-04", URL: "https://images.pexels.com/photos/1389339/pexels-photo-1389339.jpeg", Description: "Row houses in morning light", Attribution: "Pexels curated"},
		{ID: "curated-city-05", URL: "https://images.pexels.com/photos/2129796/pexels-photo-2129796.jpeg", Description: "Skyline from a rooftop", Attribution: "Pexels curated"},
		{ID: "curated-city-06", URL: "https://images.pexels.com/photos/1486222/pexels-photo-1486222.jpeg", Description: "Fire escapes and facades", Attribution: "Pexels curated"},
		{ID: "curated-city-07", URL: "https://images.pexels.com/photos/421927/pexels-photo-421927.jpeg", Description: "Crosswalk crowd at noon", Attribution: "Pexels curated"},
		{ID: "curated-city-08", URL: "https://images.pexels.com/photos/756908/pexels-photo-756908.jpeg", Description: "Bridge approach at night", Attribution: "Pexels curated"},
		{ID: "curated-city-09", URL: "https://images.pexels.com/photos/1619569/pexels-photo-1619569.jpeg", Description: "Neon-lit storefronts", Attribution: "Pexels curated"},
	},
	"residential": {
		{ID: "curated-res-01", URL: "https://images.pexels.com/photos/106399/pexels-photo-106399.jpeg", Description: "Porch with planters", Attribution: "Pexels curated"},
		{ID: "curated-res-02", URL: "https://images.pexels.com/photos/1396122/pexels-photo-1396122.jpeg", Description: "Tree-lined residential block", Attribution: "Pexels curated"},
		{ID: "curated-res-03", URL: "https://images.pexels.com/photos/259588/pexels-photo-259588.jpeg", Description: "Stoop with bicycles", Attribution: "Pexels curated"},
		{ID: "curated-res-04", URL: "https://images.pexels.com/photos/280222/pexels-photo-280222.jpeg", Description: "Back garden in summer", Attribution: "Pexels curated"},
	},
	"nature": {
		{ID: "curated-nat-01", URL: "https://images.pexels.com/photos/355321/pexels-photo-355321.jpeg", Description: "Park meadow in autumn", Attribution: "Pexels curated"},
		{ID: "curated-nat-02", URL: "https://images.pexels.com/photos/462024/pexels-photo-462024.jpeg", Description: "Pond with willow trees", Attribution: "Pexels curated"},
		{ID: "curated-nat-03", URL: "https://images.pexels.com/photos/1105389/pexels-photo-1105389.jpeg", Description: "Botanic garden path", Attribution: "Pexels curated"},
		{ID: "curated-nat-04", URL: "https://images.pexels.com/photos/462025/pexels-photo-462025.jpeg", Description: "Pond with willow trees, wide crop", Attribution: "Pexels curated"},
		{ID: "curated-nat-05", URL: "https://images.pexels.com/photos/1770809/pexels-photo-1770809.jpeg", Description: "Waterfront promenade at sunrise", Attribution: "Pexels curated"},
	},
	"food": {
		{ID: "curated-food-01", URL: "https://images.pexels.com/photos/1307698/pexels-photo-1307698.jpeg", Description: "Cafe counter with pastries", Attribution: "Pexels curated"},
		{ID: "curated-food-02", URL: "https://images.pexels.com/photos/1126728/pexels-photo-1126728.jpeg", Description: "Outdoor dining tables", Attribution: "Pexels curated"},
		{ID: "curated-food-03", URL: "https://images.pexels.com/photos/1850595/pexels-photo-1850595.jpeg", Description: "Farmers market produce stand", Attribution: "Pexels curated"},
	},
}

// Catalog returns the curated bucket for a category, or nil if the
// category is unknown.
func Catalog(category string) []core.PhotoRef {
	return curatedCatalogs[category]
}

// CatalogCategories lists all curated bucket names.
func CatalogCategories() []string {
	categories := make([]string, 0, len(curatedCatalogs))
	for category := range curatedCatalogs {
		categories = append(categories, category)
	}
	return categories
}
