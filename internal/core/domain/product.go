package domain

type (
	Product struct {
		ID          string
		Title       string
		Category    string
		OriginPrice float64
		Price       float64
		Unit        string
		Description string
		Content     string
		IsEnabled   bool
		ImageURL    string
		ImagesURL   []string
	}

	Pagination struct {
		TotalPages  int
		CurrentPage int
		HasPre      bool
		HasNext     bool
		Category    string
	}

	// A ProductsPage is the decoded products listing response as the server
	// sent it.
	ProductsPage struct {
		Success    bool
		Products   []Product
		Pagination Pagination
		Messages   []string
	}
)

// ProductsParams filters the products listing. Zero values are absent:
// Page 0 and an empty Category are not sent to the server.
type ProductsParams struct {
	Page     int
	Category string
}

// Normalized maps a negative Page to 0, the absent page.
func (p ProductsParams) Normalized() ProductsParams {
	p.Page = max(p.Page, 0)
	return p
}
