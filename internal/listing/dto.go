// AngelaMos | 2026
// dto.go

package listing

import (
	"net/http"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type CreateListingRequest struct {
	Title       string   `json:"title"       validate:"required,min=3,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	Price       int64    `json:"price"       validate:"gte=0"`
	Category    string   `json:"category"    validate:"required,max=64"`
	City        string   `json:"city"        validate:"max=64"`
	Condition   string   `json:"condition"   validate:"omitempty,oneof=new used"`
	Images      []string `json:"images"      validate:"max=50,dive,url"`
}

type UpdateListingRequest struct {
	Title       *string   `json:"title"       validate:"omitempty,min=3,max=120"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Price       *int64    `json:"price"       validate:"omitempty,gte=0"`
	Category    *string   `json:"category"    validate:"omitempty,max=64"`
	City        *string   `json:"city"        validate:"omitempty,max=64"`
	Condition   *string   `json:"condition"   validate:"omitempty,oneof=new used"`
	Images      *[]string `json:"images"      validate:"omitempty,max=50,dive,url"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type PushResponse struct {
	Listing       *Listing `json:"listing"`
	TransactionID string   `json:"transaction_id"`
	Charged       int64    `json:"charged"`
}

func filterFromRequest(r *http.Request) FeedFilter {
	q := r.URL.Query()
	return FeedFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		SellerID: q.Get("seller_id"),
		Search:   q.Get("q"),
		MinPrice: core.QueryInt64(r, "min_price"),
		MaxPrice: core.QueryInt64(r, "max_price"),
	}
}
