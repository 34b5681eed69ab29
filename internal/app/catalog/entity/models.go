package entity

import "time"

// Category представляет категорию товаров
// Имя категории глобально уникально, проверка выполняется в service layer
type Category struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Product представляет товар в каталоге
// CategoryID хранит внутренний идентификатор категории и наружу не отдается,
// в ответах категория всегда представлена человекочитаемым именем
type Product struct {
	ID         string            `json:"id" bson:"_id"`
	Name       string            `json:"name" bson:"name"`
	Brand      string            `json:"brand" bson:"brand"`
	Price      float64           `json:"price" bson:"price"` // Всегда > 0, проверяется валидацией запроса
	CategoryID string            `json:"-" bson:"category_id"`
	Quantity   int               `json:"quantity" bson:"quantity"`
	ImageURL   string            `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Features   map[string]string `json:"features,omitempty" bson:"features,omitempty"`
	Reviews    []string          `json:"reviews,omitempty" bson:"reviews,omitempty"` // Append-only список отзывов
}

// ProductWithCategory содержит товар с разрешенным именем категории
// Category пустая строка, если категория товара была удалена (orphaned ref)
type ProductWithCategory struct {
	Product
	Category string `json:"category"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}
