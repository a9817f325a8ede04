package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

// GET    v2/api/{path}/products?page=N&category=C (200 OK, 400 Bad request)
// GET    v2/api/{path}/products/all (200 OK)
// GET    v2/api/{path}/cart (200 OK)
// POST   v2/api/{path}/cart JSON {"data":{"product_id","qty"}} (200 OK, 400, 404)
// PUT    v2/api/{path}/cart/{id} JSON {"data":{"product_id","qty"}} (200 OK, 400, 404)
// DELETE v2/api/{path}/cart/{id} (200 OK, 404 Not found)

const (
	msgAdded   = "已加入購物車"
	msgUpdated = "已更新購物車"
	msgDeleted = "已刪除"

	maxBodyBytes = 1 << 20
)

type StorefrontHandler struct {
	backend port.StorefrontBackend
}

func RegisterStorefront(
	mux *http.ServeMux, backend port.StorefrontBackend, apiPath string,
) {
	h := StorefrontHandler{backend}
	prefix := "/v2/api/" + apiPath

	mux.HandleFunc("GET "+prefix+"/products", h.GetProducts)
	mux.HandleFunc("GET "+prefix+"/products/all", h.GetAllProducts)
	mux.HandleFunc("GET "+prefix+"/cart", h.GetCart)
	mux.HandleFunc("POST "+prefix+"/cart", h.PostCart)
	mux.HandleFunc("PUT "+prefix+"/cart/{id}", h.PutCart)
	mux.HandleFunc("DELETE "+prefix+"/cart/{id}", h.DeleteCart)
}

func (h StorefrontHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetProducts"
	log := slog.With("op", op)

	var params domain.ProductsParams
	if s := r.URL.Query().Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			log.Warn("failed to parse page", "err", err)
			return
		}
		params.Page = page
	}
	params.Category = r.URL.Query().Get("category")

	page, err := h.backend.ListProducts(r.Context(), params)
	if err != nil {
		writeBackendError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, ProductsPageToSchema(page), op)
}

func (h StorefrontHandler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetAllProducts"

	ps, err := h.backend.AllProducts(r.Context())
	if err != nil {
		writeBackendError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, schema.AllProductsResponse{
		Success:  true,
		Products: ProductsToSchema(ps),
	}, op)
}

func (h StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetCart"

	cart, err := h.backend.ReadCart(r.Context())
	if err != nil {
		writeBackendError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, schema.CartResponse{
		Success:  true,
		Data:     CartToSchema(cart),
		Messages: []string{},
	}, op)
}

func (h StorefrontHandler) PostCart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.PostCart"
	log := slog.With("op", op)

	req, ok := decodeItemRequest(w, r, op)
	if !ok {
		return
	}

	line, err := h.backend.AddItem(r.Context(), domain.AddCartItem{
		ProductID: req.Data.ProductID,
		Qty:       req.Data.Qty,
	})
	if err != nil {
		writeBackendError(w, err, op)
		return
	}

	item := cartLineToSchema(line)
	writeJSON(w, http.StatusOK, schema.CartItemResponse{
		Success: true,
		Message: msgAdded,
		Data:    &item,
	}, op)
	log.Info("item added", "id", line.ID, "qty", line.Qty)
}

func (h StorefrontHandler) PutCart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.PutCart"
	log := slog.With("op", op)

	req, ok := decodeItemRequest(w, r, op)
	if !ok {
		return
	}

	line, err := h.backend.UpdateItem(r.Context(), domain.UpdateCartItem{
		ID:        r.PathValue("id"),
		ProductID: req.Data.ProductID,
		Qty:       req.Data.Qty,
	})
	if err != nil {
		writeBackendError(w, err, op)
		return
	}

	item := cartLineToSchema(line)
	writeJSON(w, http.StatusOK, schema.CartItemResponse{
		Success: true,
		Message: msgUpdated,
		Data:    &item,
	}, op)
	log.Info("item updated", "id", line.ID, "qty", line.Qty)
}

func (h StorefrontHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.DeleteCart"
	log := slog.With("op", op)

	id := r.PathValue("id")
	if err := h.backend.DeleteItem(r.Context(), id); err != nil {
		writeBackendError(w, err, op)
		return
	}

	writeJSON(w, http.StatusOK, schema.MessageResponse{
		Success: true,
		Message: quote(msgDeleted),
	}, op)
	log.Info("item deleted", "id", id)
}

func decodeItemRequest(
	w http.ResponseWriter, r *http.Request, op string,
) (schema.CartItemRequest, bool) {
	var req schema.CartItemRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		slog.Warn("failed to parse JSON", "op", op, "err", err)
		return req, false
	}
	return req, true
}

func writeBackendError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, storage.ErrInvalidQty):
		writeError(w, http.StatusBadRequest, "購買數量不可小於 1")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "找不到資料")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		slog.Error("backend failure", "op", op, "err", err)
		return
	}
	slog.Warn("request rejected", "op", op, "err", err)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, schema.MessageResponse{
		Success: false,
		Message: quote(msg),
	}, "writeError")
}

func writeJSON(w http.ResponseWriter, status int, v any, op string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
