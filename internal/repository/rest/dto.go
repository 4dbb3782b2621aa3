package rest

import "time"

// Listing is the wire form of a listing
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	CondominiumID string    `json:"condominium_id"`
	SellerID      string    `json:"seller_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListingsResponse wraps GET /api/listings
type ListingsResponse struct {
	Listings []Listing `json:"listings"`
}

// MaxPriceResponse wraps GET /api/listings/max-price
type MaxPriceResponse struct {
	MaxPrice float64 `json:"max_price"`
}

// Location is the wire form of a state, city or condominium
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ParentID    string `json:"parent_id,omitempty"`
	Approved    *bool  `json:"approved,omitempty"` // Condominiums only; absent means approved
	SuggestedBy string `json:"suggested_by,omitempty"`
}

// LocationsResponse wraps the location endpoints
type LocationsResponse struct {
	Items []Location `json:"items"`
}

// SuggestRequest is the body of POST /api/cities/{id}/condominiums
type SuggestRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// SuggestResponse answers a suggestion
type SuggestResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of any non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
