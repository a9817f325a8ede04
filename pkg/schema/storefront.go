package schema

import "encoding/json"

// JSON shapes of the storefront API (ec-course v2).

type (
	Product struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Category    string   `json:"category"`
		OriginPrice float64  `json:"origin_price"`
		Price       float64  `json:"price"`
		Unit        string   `json:"unit"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		IsEnabled   int      `json:"is_enabled"`
		ImageURL    string   `json:"imageUrl"`
		ImagesURL   []string `json:"imagesUrl,omitempty"`
	}

	Pagination struct {
		TotalPages  int    `json:"total_pages"`
		CurrentPage int    `json:"current_page"`
		HasPre      bool   `json:"has_pre"`
		HasNext     bool   `json:"has_next"`
		Category    string `json:"category"`
	}

	ProductsResponse struct {
		Success    bool       `json:"success"`
		Products   []Product  `json:"products"`
		Pagination Pagination `json:"pagination"`
		Messages   []string   `json:"messages"`
	}

	AllProductsResponse struct {
		Success  bool      `json:"success"`
		Products []Product `json:"products"`
	}
)

type (
	CartLineItem struct {
		ID         string  `json:"id"`
		ProductID  string  `json:"product_id"`
		Qty        int     `json:"qty"`
		Total      float64 `json:"total"`
		FinalTotal float64 `json:"final_total"`
		Product    Product `json:"product"`
	}

	CartInfo struct {
		Carts      []CartLineItem `json:"carts"`
		Total      float64        `json:"total"`
		FinalTotal float64        `json:"final_total"`
	}

	CartResponse struct {
		Success  bool     `json:"success"`
		Data     CartInfo `json:"data"`
		Messages []string `json:"messages"`
	}

	CartItemPayload struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	}

	// CartItemRequest is the body of add and update cart requests.
	CartItemRequest struct {
		Data CartItemPayload `json:"data"`
	}

	CartItemResponse struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Data    *CartLineItem `json:"data,omitempty"`
	}

	// MessageResponse is the generic acknowledgement and failure body.
	MessageResponse struct {
		Success bool            `json:"success"`
		Message json.RawMessage `json:"message,omitempty"`
	}
)
