package repository

import (
	"context"
	"errors"
	"fmt"

	"ecomcatalog/internal/app/catalog/entity"
	"ecomcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{collection: db.Collection("products")}
}

// Create сохраняет новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpInsert, "products")
	defer timer.ObserveDuration()

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Гонка между проверкой дубликата в сервисе и вставкой
			return ErrProductExists
		}
		metrics.RecordDbError("catalog-service", metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "products")
	defer timer.ObserveDuration()

	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return &product, nil
}

// GetAll получает все товары в естественном порядке хранилища
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "products")
	defer timer.ObserveDuration()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// FindFiltered выполняет запрос в два шага: выборка страницы со skip/limit/sort
// и подсчет общего числа совпадений без пагинации. Шаги не атомарны между
// собой: при конкурентной записи счетчик и страница могут разойтись на
// ограниченную величину, это принятое поведение без коррекции.
func (r *productRepository) FindFiltered(ctx context.Context, query ProductQuery) ([]entity.Product, int64, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "products")
	defer timer.ObserveDuration()

	filter := query.Filter()

	cursor, err := r.collection.Find(ctx, filter, query.FindOptions())
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, total, nil
}

// GetFeatured возвращает limit товаров с наибольшим количеством отзывов
// Порядок товаров с равным количеством отзывов не специфицирован
func (r *productRepository) GetFeatured(ctx context.Context, limit int) ([]entity.Product, error) {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpFind, "products")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$addFields", Value: bson.M{
			"review_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "review_count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpFind)
		return nil, fmt.Errorf("failed to aggregate featured products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode featured products: %w", err)
	}

	return products, nil
}

// Update перезаписывает хранимые поля товара, кроме списка отзывов
// Отзывы append-only и меняются только через AppendReview
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"brand":       product.Brand,
			"price":       product.Price,
			"category_id": product.CategoryID,
			"quantity":    product.Quantity,
			"image_url":   product.ImageURL,
			"features":    product.Features,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpUpdate)
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// AppendReview атомарно дописывает отзыв в конец списка отзывов товара
// $push создает массив при его отсутствии, порядок добавления сохраняется
func (r *productRepository) AppendReview(ctx context.Context, productID string, review string) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	update := bson.M{"$push": bson.M{"reviews": review}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpUpdate)
		return fmt.Errorf("failed to append review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewDbTimer("catalog-service", metrics.DbOpDelete, "products")
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.RecordDbError("catalog-service", metrics.DbOpDelete)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
