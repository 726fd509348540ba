package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
)

const (
	productListLimit  = 50
	searchResultLimit = 20
)

type ProductSource interface {
	All() []catalog.Product
	Search(term string) []catalog.Product
	Categories() []string
	Stats() catalog.Stats
}

type ProductHandler struct {
	products ProductSource
	resolver *pricing.Resolver
}

func NewProductHandler(products ProductSource, resolver *pricing.Resolver) *ProductHandler {
	return &ProductHandler{products: products, resolver: resolver}
}

// ProductInfo is a product priced for one tier.
type ProductInfo struct {
	Code        string `json:"codigo"`
	Description string `json:"descripcion"`
	Category    string `json:"categoria"`
	Price       string `json:"precio"`
	Tier        string `json:"tipoCliente"`
	Multiplier  string `json:"multiplicador"`
}

type CatalogStats struct {
	catalog.Stats
	Multiplier string `json:"multiplicadorPrecio"`
}

type ProductsResponse struct {
	Stats      CatalogStats  `json:"stats"`
	Products   []ProductInfo `json:"products"`
	Categories []string      `json:"categories"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []catalog.Product `json:"results"`
	Total   int               `json:"total"`
}

func (h *ProductHandler) info(p catalog.Product, t pricing.Tier) ProductInfo {
	price := "Precio no disponible"
	if unit := h.resolver.MarkedUpPrice(p, t); unit.IsPositive() {
		price = "$" + unit.StringFixed(2)
	}
	return ProductInfo{
		Code:        p.Code,
		Description: p.Description,
		Category:    p.Category,
		Price:       price,
		Tier:        string(t),
		Multiplier:  h.resolver.Multiplier().String(),
	}
}

// ListProducts godoc
// @Summary Catalog overview
// @Description Catalog statistics, the first 50 products at the general price and the categories
// @Tags Products
// @Produce json
// @Success 200 {object} ProductsResponse
// @Failure 500 {object} map[string]interface{}
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	all := h.products.All()
	if len(all) > productListLimit {
		all = all[:productListLimit]
	}

	infos := make([]ProductInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, h.info(p, pricing.TierGeneral))
	}

	return c.JSON(ProductsResponse{
		Stats:      CatalogStats{Stats: h.products.Stats(), Multiplier: h.resolver.Multiplier().String()},
		Products:   infos,
		Categories: h.products.Categories(),
	})
}

// SearchProducts godoc
// @Summary Search products
// @Description Up to 20 products whose code, description or category match the query
// @Tags Products
// @Produce json
// @Param query path string true "Search term"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} map[string]interface{}
// @Router /products/search/{query} [get]
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		log.Warn().Err(err).Str("query", c.Params("query")).Msg("⚠️ Bad search query")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Consulta inválida"})
	}

	results := h.products.Search(query)
	total := len(results)
	if total > searchResultLimit {
		results = results[:searchResultLimit]
	}
	if results == nil {
		results = []catalog.Product{}
	}

	return c.JSON(SearchResponse{Query: query, Results: results, Total: total})
}
