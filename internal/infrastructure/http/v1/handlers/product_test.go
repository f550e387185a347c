package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
	"gelateria/internal/domain/product"
	"gelateria/internal/infrastructure/http/v1/middleware"
)

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*product.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	if stored.Version != p.Version {
		return apperror.NewConcurrentModification("product", p.ID)
	}
	cp := *p
	cp.Version = stored.Version + 1
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error {
	if _, ok := r.products[productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	delete(r.products, productID)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	filter.Normalize()
	result := domain.ListResult[*product.Product]{
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, p := range r.products {
		cp := *p
		result.Items = append(result.Items, &cp)
	}
	result.Total = int64(len(result.Items))
	return result, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) DeductStock(ctx context.Context, productID id.ID, quantity int64) error {
	return nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, productID id.ID, quantity int64) error {
	return nil
}

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

func newProductRouter(repo *fakeProductRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewProductHandler(product.NewService(repo, nopTxManager{}))

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/api/products", handler.List)
	router.GET("/api/products/:id", handler.Get)
	router.POST("/api/products", handler.Create)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func TestProductCreateAndGet(t *testing.T) {
	repo := newFakeProductRepo()
	router := newProductRouter(repo)

	status, env := doRequest(t, router, http.MethodPost, "/api/products",
		`{"name":"Sundae","price":12.50,"costPrice":5.00,"stock":10,"category":"especial"}`)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)

	var created product.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Sundae", created.Name)
	assert.True(t, types.MustMoney("12.50").Equal(created.Price))
	assert.Equal(t, int64(10), created.Stock)

	status, env = doRequest(t, router, http.MethodGet, "/api/products/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var fetched product.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestProductCreateRejectsMissingName(t *testing.T) {
	router := newProductRouter(newFakeProductRepo())

	status, env := doRequest(t, router, http.MethodPost, "/api/products",
		`{"price":12.50}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeValidation, env.Error.Code)
}

func TestProductGetInvalidID(t *testing.T) {
	router := newProductRouter(newFakeProductRepo())

	status, env := doRequest(t, router, http.MethodGet, "/api/products/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeValidation, env.Error.Code)
}

func TestProductGetNotFound(t *testing.T) {
	router := newProductRouter(newFakeProductRepo())

	status, env := doRequest(t, router, http.MethodGet, "/api/products/"+id.New().String(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeNotFound, env.Error.Code)
}

func TestProductListEnvelope(t *testing.T) {
	repo := newFakeProductRepo()
	router := newProductRouter(repo)

	for _, body := range []string{
		`{"name":"Casquinha","price":7.00,"stock":5}`,
		`{"name":"Milkshake","price":15.00,"stock":3}`,
	} {
		status, _ := doRequest(t, router, http.MethodPost, "/api/products", body)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := doRequest(t, router, http.MethodGet, "/api/products?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 10, env.Pagination.Limit)
	assert.Equal(t, int64(2), env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.Pages)

	var items []product.Product
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
}
