package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/models"
	"product-schema-service/internal/preview"
	"product-schema-service/internal/pricing"
	"product-schema-service/internal/repository"
	"product-schema-service/internal/schema"
)

// SnapshotLoader loads the catalog view of a stored product
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, tenantID string, productID uuid.UUID, opts repository.SnapshotOptions) (*catalog.Snapshot, error)
}

// IdentifierStores hands out the identifier store of a tenant
type IdentifierStores interface {
	ForTenant(tenantID string) identifiers.Store
}

type SchemaHandler struct {
	products     SnapshotLoader
	stores       IdentifierStores
	settings     schema.Settings
	snapshotOpts repository.SnapshotOptions
	generator    *schema.Generator
	preview      *preview.Builder
	logger       *logrus.Logger
}

func NewSchemaHandler(products SnapshotLoader, stores IdentifierStores, settings schema.Settings, snapshotOpts repository.SnapshotOptions, previewCfg preview.Config, logger *logrus.Logger) *SchemaHandler {
	formatter := pricing.NewFormatter(settings.PriceDecimals, settings.CurrencyCode)
	return &SchemaHandler{
		products:     products,
		stores:       stores,
		settings:     settings,
		snapshotOpts: snapshotOpts,
		generator:    schema.NewGenerator(settings),
		preview:      preview.NewBuilder(previewCfg, formatter),
		logger:       logger,
	}
}

// GetProductSchema returns the structured data graph of a product
// @Summary Get product structured data
// @Description Generates the schema.org Product graph for a product page
// @Tags Schema
// @Produce json
// @Param id path string true "Product ID"
// @Param format query string false "json (default) or html"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/schema [get]
func (h *SchemaHandler) GetProductSchema(c *gin.Context) {
	product, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	page := productPage(product)
	h.render(c, page, product, h.generator.Generate(page, product))
}

// BuildProductSchema corrects and enriches an upstream Product node posted by
// the page renderer
// @Summary Build product structured data from an upstream node
// @Tags Schema
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param format query string false "json (default) or html"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/schema [post]
func (h *SchemaHandler) BuildProductSchema(c *gin.Context) {
	var upstream schema.Document
	if err := c.ShouldBindJSON(&upstream); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body must be a JSON object",
			},
		})
		return
	}

	product, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	h.render(c, productPage(product), product, upstream)
}

// FilterWebPage reshapes the WebPage node of a product or checkout page
// @Summary Filter the WebPage node of a page
// @Tags Schema
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.WebPageFilterRequest true "WebPage node"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/schema/webpage [post]
func (h *SchemaHandler) FilterWebPage(c *gin.Context) {
	var req models.WebPageFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	product, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	page := productPage(product)
	switch req.PageKind {
	case "", string(schema.PageProduct):
	case string(schema.PageCheckout), string(schema.PageOther):
		page.Kind = schema.PageKind(req.PageKind)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "pageKind must be one of product, checkout, other",
				Field:   "pageKind",
			},
		})
		return
	}

	resp := models.WebPageFilterResponse{
		WebPage: schema.FilterWebPage(page, schema.Document(req.WebPage)),
	}
	if req.NodeTypes != nil {
		resp.NodeTypes = schema.RemoveBreadcrumbType(req.NodeTypes)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    resp,
	})
}

// GetProductPreview returns the chat link preview labels of a product
// @Summary Get chat link preview data
// @Tags Schema
// @Produce json
// @Param id path string true "Product ID"
// @Param lang query string false "Label language, e.g. de"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/preview [get]
func (h *SchemaHandler) GetProductPreview(c *gin.Context) {
	product, ok := h.loadSnapshot(c)
	if !ok {
		return
	}

	builder := h.preview
	if lang := c.Query("lang"); lang != "" {
		builder = builder.ForLanguage(lang)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    builder.Build(product),
	})
}

// loadSnapshot resolves the :id product of the request. On failure the error
// response has been written.
func (h *SchemaHandler) loadSnapshot(c *gin.Context) (*catalog.Snapshot, bool) {
	tenantID := c.GetString("tenant_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
				Field:   "id",
			},
		})
		return nil, false
	}

	product, err := h.products.LoadSnapshot(c.Request.Context(), tenantID, productID, h.snapshotOpts)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return nil, false
		}

		h.logger.WithFields(logrus.Fields{
			"tenant_id":  tenantID,
			"product_id": productID.String(),
		}).WithError(err).Error("Failed to load product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return nil, false
	}

	return product, true
}

// render runs the engine over upstream and writes the graph once
func (h *SchemaHandler) render(c *gin.Context, page schema.Page, product catalog.Product, upstream schema.Document) {
	engine := schema.NewEngine(h.settings, h.stores.ForTenant(c.GetString("tenant_id")), schema.WithLogger(h.logger))

	state := schema.NewState()
	state.Store(engine.Build(c.Request.Context(), page, product, upstream))

	var buf bytes.Buffer
	contentType := "application/ld+json; charset=utf-8"
	var err error
	if c.Query("format") == "html" {
		contentType = "text/html; charset=utf-8"
		_, err = state.RenderScriptTag(&buf)
	} else {
		_, err = state.Render(&buf)
	}
	if err != nil {
		h.logger.WithError(err).WithField("product_id", product.ID()).Error("Failed to render structured data")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RENDER_FAILED",
				Message: "Failed to render structured data",
			},
		})
		return
	}

	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func productPage(product catalog.Product) schema.Page {
	return schema.Page{
		Canonical: product.Permalink(),
		Kind:      schema.PageProduct,
	}
}
