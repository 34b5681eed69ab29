package repository

import (
	"context"
	"errors"

	"ecomcatalog/internal/app/catalog/entity"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrProductExists    = errors.New("product with this id already exists")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Delete(ctx context.Context, id string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	// FindFiltered возвращает страницу товаров и общее число совпадений по всем страницам
	FindFiltered(ctx context.Context, query ProductQuery) ([]entity.Product, int64, error)
	GetFeatured(ctx context.Context, limit int) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	AppendReview(ctx context.Context, productID string, review string) error
	Delete(ctx context.Context, id string) error
}
