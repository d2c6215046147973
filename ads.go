package pingrab

import (
	"regexp"
	"strings"
)

// AdKeywords are commercial-intent tokens (English and Russian) that mark a
// candidate's descriptive text as advertising. Matching is case-insensitive
// substring. Supply is abundant, so false positives here are cheap; false
// negatives are tolerated.
var AdKeywords = []string{
	"ad", "sponsored", "промо", "реклама", "promo",
	"shop", "buy", "купить", "магазин", "store",
	"sale", "скидка", "discount", "заказать",
	"price", "цена", "₽", "$", "руб", "рублей",
	"limited", "offer", "code", "промокод",
}

// AdHostFragments are ad-network and tracking host substrings. A candidate
// whose image URL contains any of them is rejected outright.
var AdHostFragments = []string{
	"adsystem", "adserver", "doubleclick",
	"googleadservices", "amazon-adsystem",
	"analytics", "tracking", "pixel",
}

// sponsoredAttrs are element attributes that explicitly flag paid placement.
var sponsoredAttrs = []string{"data-sponsored", "data-promoted", "data-ad"}

// pricePatterns match a currency symbol adjacent to digits, in either order.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s?₽`),
	regexp.MustCompile(`(?i)\d+\s?руб`),
	regexp.MustCompile(`\$\d+`),
	regexp.MustCompile(`€\d+`),
}

// IsAdvertisement reports whether a candidate looks like an ad. The decision
// is the OR of independent signals: commercial keywords in the descriptive
// text, ad-network fragments in the URL, an explicit sponsorship attribute,
// and price patterns in the text. Pure function, no I/O.
func IsAdvertisement(altText, sourceURL string, attrs map[string]string) bool {
	return IsAdvertisementWith(altText, sourceURL, attrs, nil, nil)
}

// IsAdvertisementWith is like IsAdvertisement but also checks caller-supplied
// extra keyword and host lists, with the same substring-match semantics as the
// built-in AdKeywords / AdHostFragments.
func IsAdvertisementWith(altText, sourceURL string, attrs map[string]string, extraKeywords, extraHosts []string) bool {
	alt := strings.ToLower(altText)
	for _, kw := range AdKeywords {
		if strings.Contains(alt, kw) {
			return true
		}
	}
	for _, kw := range extraKeywords {
		if strings.Contains(alt, strings.ToLower(kw)) {
			return true
		}
	}

	src := strings.ToLower(sourceURL)
	for _, frag := range AdHostFragments {
		if strings.Contains(src, frag) {
			return true
		}
	}
	for _, frag := range extraHosts {
		if strings.Contains(src, strings.ToLower(frag)) {
			return true
		}
	}

	for _, attr := range sponsoredAttrs {
		if isTruthy(attrs[attr]) {
			return true
		}
	}

	for _, re := range pricePatterns {
		if re.MatchString(altText) {
			return true
		}
	}

	return false
}

// isAd applies the configured extra lists on top of the built-in signals.
func (cfg *Config) isAd(c Candidate) bool {
	return IsAdvertisementWith(c.AltText, c.SourceURL, c.Attrs, cfg.ExtraAdKeywords, cfg.ExtraAdHosts)
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}
