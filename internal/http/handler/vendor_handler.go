// Package handler exposes the HTTP surface: vendor CRUD and the identity
// webhook.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/http/middleware"
	"github.com/vendorly/vendorly-api/internal/service"
)

// VendorHandler maps the vendor CRUD service onto gin routes.
type VendorHandler struct {
	Vendors *service.VendorService
	Logger  *zap.Logger
}

func NewVendorHandler(vendors *service.VendorService, logger *zap.Logger) *VendorHandler {
	return &VendorHandler{Vendors: vendors, Logger: logger}
}

type vendorRequest struct {
	Name              string `json:"name"`
	BankAccountNumber string `json:"bankAccountNumber"`
	BankName          string `json:"bankName"`
	AddressLine1      string `json:"addressLine1"`
	AddressLine2      string `json:"addressLine2"`
	City              string `json:"city"`
	Country           string `json:"country"`
	Zip               string `json:"zip"`
}

func (r vendorRequest) input() domain.VendorInput {
	return domain.VendorInput{
		Name:              r.Name,
		BankAccountNumber: r.BankAccountNumber,
		BankName:          r.BankName,
		AddressLine1:      r.AddressLine1,
		AddressLine2:      r.AddressLine2,
		City:              r.City,
		Country:           r.Country,
		Zip:               r.Zip,
	}
}

type vendorResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	BankAccountNumber string    `json:"bankAccountNumber"`
	BankName          string    `json:"bankName"`
	AddressLine1      string    `json:"addressLine1"`
	AddressLine2      string    `json:"addressLine2,omitempty"`
	City              string    `json:"city,omitempty"`
	Country           string    `json:"country,omitempty"`
	Zip               string    `json:"zip,omitempty"`
	OwnerID           int64     `json:"ownerId"`
	OwnerEmail        string    `json:"ownerEmail"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func newVendorResponse(v domain.Vendor) vendorResponse {
	return vendorResponse{
		ID:                v.ID,
		Name:              v.Name,
		BankAccountNumber: v.BankAccountNumber,
		BankName:          v.BankName,
		AddressLine1:      v.AddressLine1,
		AddressLine2:      v.AddressLine2,
		City:              v.City,
		Country:           v.Country,
		Zip:               v.Zip,
		OwnerID:           v.OwnerID,
		OwnerEmail:        v.OwnerEmail,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

type paginationResponse struct {
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// List handles GET /vendors.
func (h *VendorHandler) List(c *gin.Context) {
	caller, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	params := domain.ListParams{
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 10),
		SortBy:    c.DefaultQuery("sortBy", "name"),
		SortOrder: domain.SortOrder(c.DefaultQuery("sortOrder", "asc")),
		Filter:    c.Query("filter"),
	}

	page, err := h.Vendors.List(c.Request.Context(), caller, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	vendors := make([]vendorResponse, 0, len(page.Vendors))
	for _, v := range page.Vendors {
		vendors = append(vendors, newVendorResponse(v))
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"pagination": paginationResponse{
			TotalCount:  page.TotalCount,
			TotalPages:  page.TotalPages,
			CurrentPage: page.CurrentPage,
			Limit:       page.Limit,
		},
	})
}

// Get handles GET /vendors/:id.
func (h *VendorHandler) Get(c *gin.Context) {
	caller, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, err := vendorID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	vendor, err := h.Vendors.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVendorResponse(vendor))
}

// Create handles POST /vendors.
func (h *VendorHandler) Create(c *gin.Context) {
	caller, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	vendor, err := h.Vendors.Create(c.Request.Context(), caller, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newVendorResponse(vendor))
}

// Update handles PUT /vendors/:id.
func (h *VendorHandler) Update(c *gin.Context) {
	caller, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, err := vendorID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	vendor, err := h.Vendors.Update(c.Request.Context(), caller, id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVendorResponse(vendor))
}

// Delete handles DELETE /vendors/:id.
func (h *VendorHandler) Delete(c *gin.Context) {
	caller, ok := middleware.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, err := vendorID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	if err := h.Vendors.Delete(c.Request.Context(), caller, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}

// respondError maps the domain taxonomy onto stable status codes. Anything
// outside the taxonomy is logged and answered with an opaque 500.
func (h *VendorHandler) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
	case errors.Is(err, domain.ErrDuplicateVendorName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vendor name must be unique"})
	case errors.Is(err, domain.ErrVendorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		h.Logger.Error("vendor request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func vendorID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
