package types

type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	Price         Money    `json:"price"`
	Images        []string `json:"images,omitempty"`
	Image         string   `json:"image,omitempty"`
	Category      string   `json:"category,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	Department    string   `json:"department,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
	SizeChart     string   `json:"size_chart,omitempty"`
	Featured      bool     `json:"featured,omitempty"`

	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// PrimaryImage returns the image shown in listings.
func (p Product) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// ProductFilter carries listing filters forwarded to the catalog.
type ProductFilter struct {
	Search     string
	Category   string
	Brand      string
	Department string
	Color      string
	Size       string
	MinPrice   string
	MaxPrice   string
	Sort       string
	Page       int
	Limit      int
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

type Review struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserName  string `json:"user_name,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at,omitempty"`
}

type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	Count         int      `json:"count"`
}

// LookupItem is one entry of a reference list (category, brand, country, ...).
type LookupItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}
