package pingrab

import (
	"fmt"

	"github.com/google/uuid"
)

// Placeholder services that generate images by URL parameter. The dimensions
// are encoded in the URL, so every reference satisfies its category's
// geometry by construction — no local validation happens or is needed.
const (
	avatarFallbackURL    = "https://api.dicebear.com/7.x/avataaars/svg?size=736&seed=%s"
	landscapeFallbackURL = "https://picsum.photos/1920/1080?random=%s"
	portraitFallbackURL  = "https://picsum.photos/1080/1920?random=%s"
)

// GenerateFallback produces count synthetic image references for the
// category. Always succeeds; each call yields distinct references via a
// random discriminator.
func GenerateFallback(category Category, count int) []ImageRef {
	if count <= 0 {
		return nil
	}

	var pattern string
	switch category {
	case Avatars:
		pattern = avatarFallbackURL
	case WallpapersPC:
		pattern = landscapeFallbackURL
	case WallpapersPhone:
		pattern = portraitFallbackURL
	default:
		pattern = "https://picsum.photos/800/600?random=%s"
	}

	refs := make([]ImageRef, 0, count)
	for i := 0; i < count; i++ {
		refs = append(refs, ImageRef{
			URL:        fmt.Sprintf(pattern, uuid.NewString()),
			Provenance: Synthetic,
		})
	}
	return refs
}
