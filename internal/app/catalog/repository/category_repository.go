package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecomcatalog/internal/app/catalog/entity"
	"ecomcatalog/pkg/logger"
	"ecomcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository создает новый репозиторий категорий
// Автоматически создает индекс по name для быстрого разрешения имени в ID.
// Индекс не уникальный: уникальность имени проверяет service layer перед вставкой.
func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	collection := db.Collection("categories")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetName("name_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("failed to create index on categories.name")
	}

	return &categoryRepository{collection: collection}
}

// Create сохраняет новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpInsert, "categories")
	defer timer.ObserveDuration()

	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpInsert)
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "categories")
	defer timer.ObserveDuration()

	var category entity.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}

	return &category, nil
}

// GetByName получает категорию по имени
// Поиск чувствителен к регистру: "Laptops" и "laptops" - разные категории
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "categories")
	defer timer.ObserveDuration()

	var category entity.Category
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}

	return &category, nil
}

// GetAll получает все категории, отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "categories")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []entity.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, nil
}

// Delete безусловно удаляет категорию
// Отсутствие категории не считается ошибкой, товары с каталожной ссылкой
// на удаленную категорию остаются в хранилище (orphaned refs допустимы)
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpDelete, "categories")
	defer timer.ObserveDuration()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpDelete)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
