package api

import (
	"net/http"
	"strconv"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/shopspring/decimal"
)

// ListCategoriesHandler handles GET /api/v1/categories
func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := a.services.Products.ListCategories(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// ListCategoryProductsHandler handles GET /api/v1/categories/{id}/products
func (a *App) ListCategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid category ID")
	if !ok {
		return
	}

	result, err := a.services.Products.ListProductsByCategory(r.Context(), id, pageFromQuery(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListProductsHandler handles GET /api/v1/products
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{Search: q.Get("search")}

	if c := q.Get("category"); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id <= 0 {
			writeMessage(w, http.StatusBadRequest, "Invalid category")
			return
		}
		filter.CategoryID = id
	}

	var ok bool
	if filter.MinPrice, ok = priceParam(w, q.Get("minPrice"), "Invalid minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = priceParam(w, q.Get("maxPrice"), "Invalid maxPrice"); !ok {
		return
	}

	list, err := a.services.Products.ListProducts(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func priceParam(w http.ResponseWriter, raw, message string) (*decimal.Decimal, bool) {
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		writeMessage(w, http.StatusBadRequest, message)
		return nil, false
	}
	return &d, true
}

// GetProductHandler handles GET /api/v1/products/{id}
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid product ID")
	if !ok {
		return
	}

	product, err := a.services.Products.GetProduct(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}
