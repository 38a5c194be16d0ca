// AngelaMos | 2026
// entity.go

package favorite

import (
	"time"

	"github.com/carterperez-dev/classifieds/internal/listing"
)

// Item is a favorited listing together with when it was saved.
type Item struct {
	listing.Listing
	FavoritedAt time.Time `db:"favorited_at" json:"favorited_at"`
}

type StatusResponse struct {
	ListingID string `json:"listing_id"`
	Favorited bool   `json:"favorited"`
}
