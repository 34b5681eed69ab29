package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"ecomcatalog/internal/app/catalog/entity"
	"ecomcatalog/internal/app/catalog/repository"
	"ecomcatalog/internal/app/catalog/repository/mocks"
	"ecomcatalog/internal/app/catalog/service"
	"ecomcatalog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("catalog-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

// setupHandler собирает handler поверх реального сервиса с мок-репозиториями
func setupHandler() (*CatalogHandler, *mocks.MockCategoryRepository, *mocks.MockProductRepository, *mocks.MockCategoryCache, *mocks.MockMessagePublisher) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCategoryCache)
	events := new(mocks.MockMessagePublisher)

	svc := service.NewCatalogService(categoryRepo, productRepo, cache, events)
	h := NewCatalogHandler(svc)

	return h, categoryRepo, productRepo, cache, events
}

func newTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// ==================== Category Handler Tests ====================

func TestCreateCategory_Created(t *testing.T) {
	// Arrange
	h, categoryRepo, _, cache, _ := setupHandler()

	categoryRepo.On("GetByName", mock.Anything, "Laptops").Return(nil, repository.ErrCategoryNotFound)
	categoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", mock.Anything).Return(nil)

	c, w := newTestContext(http.MethodPost, "/categories", entity.CreateCategoryRequest{Name: "Laptops"})

	// Act
	h.CreateCategory(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var category entity.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "Laptops", category.Name)
	assert.NotEmpty(t, category.ID)
}

func TestCreateCategory_DuplicateName_Conflict(t *testing.T) {
	// Arrange
	h, categoryRepo, _, _, _ := setupHandler()

	existing := &entity.Category{ID: "cat-1", Name: "Laptops"}
	categoryRepo.On("GetByName", mock.Anything, "Laptops").Return(existing, nil)

	c, w := newTestContext(http.MethodPost, "/categories", entity.CreateCategoryRequest{Name: "Laptops"})

	// Act
	h.CreateCategory(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCategory_InvalidBody(t *testing.T) {
	// Arrange
	h, _, _, _, _ := setupHandler()

	c, w := newTestContext(http.MethodPost, "/categories", map[string]string{"name": "x"})

	// Act
	h.CreateCategory(c)

	// Assert - имя короче двух символов не проходит валидацию
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllCategories_Empty_NotFound(t *testing.T) {
	// Arrange
	h, categoryRepo, _, cache, _ := setupHandler()

	cache.On("GetCategories", mock.Anything).Return(nil, nil)
	categoryRepo.On("GetAll", mock.Anything).Return([]entity.Category{}, nil)
	cache.On("SetCategories", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c, w := newTestContext(http.MethodGet, "/categories", nil)

	// Act
	h.GetAllCategories(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCategory_OK(t *testing.T) {
	// Arrange
	h, categoryRepo, _, cache, _ := setupHandler()

	categoryRepo.On("Delete", mock.Anything, "cat-1").Return(nil)
	cache.On("DeleteCategories", mock.Anything).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/categories/cat-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "cat-1"}}

	// Act
	h.DeleteCategory(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== Product Handler Tests ====================

func TestCreateProduct_Created(t *testing.T) {
	// Arrange
	h, categoryRepo, productRepo, _, events := setupHandler()

	category := &entity.Category{ID: "cat-1", Name: "Laptops"}
	categoryRepo.On("GetByName", mock.Anything, "Laptops").Return(category, nil)
	productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil)
	events.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := entity.ProductRequest{
		Name:     "ThinkPad X1",
		Brand:    "Lenovo",
		Price:    1299.99,
		Category: "Laptops",
		Quantity: 3,
	}
	c, w := newTestContext(http.MethodPost, "/products", req)

	// Act
	h.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var product entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "ThinkPad X1", product.Name)
}

func TestCreateProduct_UnknownCategory_NotFound(t *testing.T) {
	// Arrange
	h, categoryRepo, productRepo, _, _ := setupHandler()

	categoryRepo.On("GetByName", mock.Anything, "Ghosts").Return(nil, repository.ErrCategoryNotFound)

	req := entity.ProductRequest{
		Name:     "ThinkPad X1",
		Brand:    "Lenovo",
		Price:    1299.99,
		Category: "Ghosts",
	}
	c, w := newTestContext(http.MethodPost, "/products", req)

	// Act
	h.CreateProduct(c)

	// Assert - товар не создается
	assert.Equal(t, http.StatusNotFound, w.Code)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_NegativePrice_BadRequest(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	req := map[string]interface{}{
		"name":     "ThinkPad X1",
		"brand":    "Lenovo",
		"price":    -10.0,
		"category": "Laptops",
	}
	c, w := newTestContext(http.MethodPost, "/products", req)

	// Act
	h.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProduct_CategoryNameInResponse(t *testing.T) {
	// Arrange
	h, categoryRepo, productRepo, _, _ := setupHandler()

	category := &entity.Category{ID: "cat-1", Name: "Laptops"}
	product := &entity.Product{ID: "p-1", Name: "ThinkPad X1", Brand: "Lenovo", Price: 1299.99, CategoryID: "cat-1"}
	productRepo.On("GetByID", mock.Anything, "p-1").Return(product, nil)
	categoryRepo.On("GetByID", mock.Anything, "cat-1").Return(category, nil)

	c, w := newTestContext(http.MethodGet, "/products/p-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	// Act
	h.GetProduct(c)

	// Assert - наружу уходит имя категории, внутренний ID скрыт
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Laptops", body["category"])
	assert.NotContains(t, body, "category_id")
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrProductNotFound)

	c, w := newTestContext(http.MethodGet, "/products/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	// Act
	h.GetProduct(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterProducts_OK(t *testing.T) {
	// Arrange
	h, categoryRepo, productRepo, _, _ := setupHandler()

	category := &entity.Category{ID: "cat-1", Name: "Laptops"}
	products := []entity.Product{
		{ID: "p-1", Name: "ThinkPad X1", Brand: "Lenovo", Price: 1299.99, CategoryID: "cat-1"},
	}
	productRepo.On("FindFiltered", mock.Anything, mock.AnythingOfType("repository.ProductQuery")).
		Return(products, int64(1), nil)
	categoryRepo.On("GetByID", mock.Anything, "cat-1").Return(category, nil)

	req := entity.FilterProductsRequest{MinPrice: 100, MaxPrice: 2000}
	c, w := newTestContext(http.MethodPost, "/products/filter", req)

	// Act
	h.FilterProducts(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var page entity.ProductPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalMatching)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Laptops", page.Items[0].Category)
}

func TestFilterProducts_EmptyResult_NotFound(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("FindFiltered", mock.Anything, mock.AnythingOfType("repository.ProductQuery")).
		Return(nil, int64(0), nil)

	req := entity.FilterProductsRequest{SearchBy: "nothing"}
	c, w := newTestContext(http.MethodPost, "/products/filter", req)

	// Act
	h.FilterProducts(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterProducts_BadSortField(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	req := map[string]interface{}{"sort_by": "rating"}
	c, w := newTestContext(http.MethodPost, "/products/filter", req)

	// Act
	h.FilterProducts(c)

	// Assert - поле сортировки вне белого списка
	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "FindFiltered", mock.Anything, mock.Anything)
}

func TestGetFeaturedProducts_Empty_NotFound(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("GetFeatured", mock.Anything, 5).Return([]entity.Product{}, nil)

	c, w := newTestContext(http.MethodGet, "/products/featured", nil)

	// Act
	h.GetFeaturedProducts(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrProductNotFound)

	req := entity.ProductRequest{
		Name:     "ThinkPad X1",
		Brand:    "Lenovo",
		Price:    1299.99,
		Category: "Laptops",
	}
	c, w := newTestContext(http.MethodPut, "/products/missing", req)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	// Act
	h.UpdateProduct(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct_OK(t *testing.T) {
	// Arrange
	h, _, productRepo, _, events := setupHandler()

	product := &entity.Product{ID: "p-1", Name: "ThinkPad X1", CategoryID: "cat-1"}
	productRepo.On("GetByID", mock.Anything, "p-1").Return(product, nil)
	productRepo.On("Delete", mock.Anything, "p-1").Return(nil)
	events.On("PublishMessage", mock.Anything, "p-1", mock.Anything).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/products/p-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	// Act
	h.DeleteProduct(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== Review Handler Tests ====================

func TestAddReview_OK(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("AppendReview", mock.Anything, "p-1", "great laptop").Return(nil)

	c, w := newTestContext(http.MethodPost, "/products/p-1/reviews", entity.AddReviewRequest{Review: "great laptop"})
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	// Act
	h.AddReview(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	productRepo.AssertExpectations(t)
}

func TestAddReview_ProductNotFound(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	productRepo.On("AppendReview", mock.Anything, "missing", "great laptop").Return(repository.ErrProductNotFound)

	c, w := newTestContext(http.MethodPost, "/products/missing/reviews", entity.AddReviewRequest{Review: "great laptop"})
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	// Act
	h.AddReview(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddReview_EmptyBody_BadRequest(t *testing.T) {
	// Arrange
	h, _, productRepo, _, _ := setupHandler()

	c, w := newTestContext(http.MethodPost, "/products/p-1/reviews", map[string]string{"review": ""})
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	// Act
	h.AddReview(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "AppendReview", mock.Anything, mock.Anything, mock.Anything)
}
