package service

import (
	"context"

	"ecomcatalog/internal/app/catalog/entity"
)

type CatalogServiceInterface interface {
	AddCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ResolveCategoryID(ctx context.Context, name string) (string, error)
	ResolveCategoryName(ctx context.Context, id string) (string, error)

	AddProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.ProductWithCategory, error)
	GetAllProducts(ctx context.Context) ([]entity.ProductWithCategory, error)
	GetFilteredProducts(ctx context.Context, req *entity.FilterProductsRequest) (*entity.ProductPage, error)
	GetFeaturedProducts(ctx context.Context) ([]entity.ProductWithCategory, error)
	UpdateProduct(ctx context.Context, id string, req *entity.ProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddReview(ctx context.Context, productID string, review string) error
}
