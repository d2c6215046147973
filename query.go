package pingrab

import (
	"net/url"
	"strings"
)

// defaultQueries are the built-in search variants per category. They
// deliberately avoid commercial vocabulary ("buy", "shop", "sale") to keep ad
// density at the source low; the ad classifier catches what still slips in.
var defaultQueries = map[Category][]string{
	Avatars: {
		"avatar art", "character portrait", "anime face",
		"profile picture aesthetic", "icon art",
		"square avatar", "1:1 portrait",
		"cool avatar", "anime pfp",
	},
	WallpapersPC: {
		"landscape art", "nature scene", "digital art landscape",
		"scenery background", "aesthetic desktop",
		"4k wallpaper", "wide wallpaper",
		"mountain landscape", "cityscape",
	},
	WallpapersPhone: {
		"vertical art", "portrait scene", "aesthetic vertical",
		"nature vertical", "digital art vertical",
		"mobile wallpaper", "phone background",
		"vertical landscape", "portrait wallpaper",
	},
}

// queryVariants returns the query list for a category, preferring a
// configured override.
func (cfg *Config) queryVariants(category Category) []string {
	if qs, ok := cfg.Queries[category]; ok {
		return qs
	}
	return defaultQueries[category]
}

// searchURL builds the HTML search endpoint URL for a free-text query.
func (cfg *Config) searchURL(query string) string {
	return cfg.SearchBaseURL + "?q=" + url.QueryEscape(query)
}

// rssURL builds the RSS endpoint URL for a free-text query.
func (cfg *Config) rssURL(query string) string {
	sep := "?"
	if strings.Contains(cfg.FeedURL, "?") {
		sep = "&"
	}
	return cfg.FeedURL + sep + "q=" + url.QueryEscape(query)
}
