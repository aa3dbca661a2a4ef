package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	httphandler "github.com/vendorly/vendorly-api/internal/http/handler"
	"github.com/vendorly/vendorly-api/internal/repository"
	"github.com/vendorly/vendorly-api/internal/service"
)

var (
	adminAccount = domain.Account{ID: 1, SubjectID: "sub_admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	userOne      = domain.Account{ID: 2, SubjectID: "sub_u1", Email: "u1@example.com", Role: domain.RoleUser}
	userTwo      = domain.Account{ID: 3, SubjectID: "sub_u2", Email: "u2@example.com", Role: domain.RoleUser}
)

func newVendorHandler(repo repository.VendorRepository) *httphandler.VendorHandler {
	return httphandler.NewVendorHandler(service.NewVendorService(repo, zap.NewNop()), zap.NewNop())
}

func testContext(t *testing.T, method, target, body string, caller *domain.Account) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if caller != nil {
		c.Set("callerAccount", *caller)
	}
	return c, w
}

func seedVendor(t *testing.T, repo repository.VendorRepository, owner domain.Account, name string) domain.Vendor {
	t.Helper()
	svc := service.NewVendorService(repo, zap.NewNop())
	created, err := svc.Create(context.Background(), owner, domain.VendorInput{
		Name:              name,
		BankAccountNumber: "12345678",
		BankName:          "First National",
		AddressLine1:      "1 Main St",
	})
	require.NoError(t, err)
	return created
}

func TestListVendorsPaginationPayload(t *testing.T) {
	repo := newMemoryVendorRepo()
	for _, name := range []string{"Acme", "Globex", "Initech"} {
		seedVendor(t, repo, userOne, name)
	}
	seedVendor(t, repo, userTwo, "Stark")
	handler := newVendorHandler(repo)

	c, w := testContext(t, http.MethodGet, "/vendors?page=1&limit=2", "", &userOne)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Vendors    []map[string]any `json:"vendors"`
		Pagination struct {
			TotalCount  int64 `json:"totalCount"`
			TotalPages  int64 `json:"totalPages"`
			CurrentPage int   `json:"currentPage"`
			Limit       int   `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Vendors, 2)
	require.Equal(t, int64(3), resp.Pagination.TotalCount)
	require.Equal(t, int64(2), resp.Pagination.TotalPages)
	require.Equal(t, 1, resp.Pagination.CurrentPage)
	require.Equal(t, 2, resp.Pagination.Limit)
	require.Equal(t, "u1@example.com", resp.Vendors[0]["ownerEmail"])
}

func TestListVendorsRequiresAccount(t *testing.T) {
	handler := newVendorHandler(newMemoryVendorRepo())

	c, w := testContext(t, http.MethodGet, "/vendors", "", nil)
	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetVendorStatusMapping(t *testing.T) {
	repo := newMemoryVendorRepo()
	created := seedVendor(t, repo, userOne, "Acme")
	handler := newVendorHandler(repo)

	// owner sees the record
	c, w := testContext(t, http.MethodGet, "/vendors/1", "", &userOne)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	// another user's record exists but is not owned: 403, not 404
	c, w = testContext(t, http.MethodGet, "/vendors/1", "", &userTwo)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	// admin override
	c, w = testContext(t, http.MethodGet, "/vendors/1", "", &adminAccount)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	// absent record
	c, w = testContext(t, http.MethodGet, "/vendors/999", "", &userOne)
	c.Params = gin.Params{{Key: "id", Value: "999"}}
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateVendor(t *testing.T) {
	repo := newMemoryVendorRepo()
	handler := newVendorHandler(repo)

	body := `{"name":"Acme","bankAccountNumber":"12345678","bankName":"First National","addressLine1":"1 Main St"}`
	c, w := testContext(t, http.MethodPost, "/vendors", body, &userOne)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Acme", resp["name"])
	require.Equal(t, float64(userOne.ID), resp["ownerId"])
}

func TestCreateVendorValidationAndConflict(t *testing.T) {
	repo := newMemoryVendorRepo()
	seedVendor(t, repo, userOne, "Acme")
	handler := newVendorHandler(repo)

	// missing required fields
	c, w := testContext(t, http.MethodPost, "/vendors", `{"name":"NoBank"}`, &userOne)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Missing required fields")

	// duplicate name for the same owner
	body := `{"name":"Acme","bankAccountNumber":"1","bankName":"b","addressLine1":"a"}`
	c, w = testContext(t, http.MethodPost, "/vendors", body, &userOne)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unique")
}

func TestUpdateVendor(t *testing.T) {
	repo := newMemoryVendorRepo()
	created := seedVendor(t, repo, userOne, "Acme")
	handler := newVendorHandler(repo)

	body := `{"name":"Acme Corp","bankAccountNumber":"12345678","bankName":"First National","addressLine1":"1 Main St"}`
	c, w := testContext(t, http.MethodPut, "/vendors/1", body, &userOne)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Acme Corp", resp["name"])
}

func TestDeleteVendor(t *testing.T) {
	repo := newMemoryVendorRepo()
	created := seedVendor(t, repo, userOne, "Acme")
	handler := newVendorHandler(repo)

	c, w := testContext(t, http.MethodDelete, "/vendors/1", "", &userTwo)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(t, http.MethodDelete, "/vendors/1", "", &userOne)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(created.ID)}}
	handler.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "deleted")
}

// memoryVendorRepo is the handler-level fake; it mirrors the unique
// (owner, name) constraint the store enforces.
type memoryVendorRepo struct {
	nextID  int64
	vendors map[int64]domain.Vendor
}

var _ repository.VendorRepository = (*memoryVendorRepo)(nil)

func newMemoryVendorRepo() *memoryVendorRepo {
	return &memoryVendorRepo{vendors: make(map[int64]domain.Vendor)}
}

func (m *memoryVendorRepo) GetByID(ctx context.Context, id int64) (domain.Vendor, error) {
	vendor, ok := m.vendors[id]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return vendor, nil
}

func (m *memoryVendorRepo) List(ctx context.Context, params domain.ListParams, scope *repository.VendorScope) ([]domain.Vendor, int64, error) {
	var matched []domain.Vendor
	for _, vendor := range m.vendors {
		if scope != nil && vendor.OwnerID != scope.OwnerID {
			continue
		}
		if params.Filter != "" && !strings.Contains(strings.ToLower(vendor.Name), strings.ToLower(params.Filter)) {
			continue
		}
		matched = append(matched, vendor)
	}

	sort.Slice(matched, func(i, j int) bool {
		if params.SortOrder == domain.SortDesc {
			return matched[i].Name > matched[j].Name
		}
		return matched[i].Name < matched[j].Name
	})

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []domain.Vendor{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memoryVendorRepo) ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	for _, vendor := range m.vendors {
		if vendor.OwnerID == ownerID && vendor.Name == name && vendor.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryVendorRepo) Create(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	for _, existing := range m.vendors {
		if existing.OwnerID == vendor.OwnerID && existing.Name == vendor.Name {
			return domain.Vendor{}, domain.ErrDuplicateVendorName
		}
	}
	m.nextID++
	vendor.ID = m.nextID
	m.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (m *memoryVendorRepo) Update(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	existing, ok := m.vendors[vendor.ID]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	vendor.CreatedAt = existing.CreatedAt
	m.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (m *memoryVendorRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.vendors[id]; !ok {
		return domain.ErrVendorNotFound
	}
	delete(m.vendors, id)
	return nil
}
