package entity

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ProductRequest тело запроса на создание/обновление товара
// ID опционален: если не передан, сервис генерирует его сам.
// Category содержит человекочитаемое имя, разрешение в ID выполняет сервис.
type ProductRequest struct {
	ID       string            `json:"id" validate:"omitempty,max=64"`
	Name     string            `json:"name" validate:"required,min=2,max=200"`
	Brand    string            `json:"brand" validate:"required,min=1,max=100"`
	Price    float64           `json:"price" validate:"required,gt=0"`
	Category string            `json:"category" validate:"required"`
	Quantity int               `json:"quantity" validate:"gte=0"`
	ImageURL string            `json:"image_url" validate:"omitempty,url"`
	Features map[string]string `json:"features"`
}

// FilterProductsRequest параметры выборки товаров
// Нулевые значения означают «граница не задана»: MinPrice=0 и MaxPrice=0
// трактуются как отсутствие ценового фильтра. Ascending по умолчанию true.
type FilterProductsRequest struct {
	MinPrice   float64 `json:"min_price" validate:"gte=0"`
	MaxPrice   float64 `json:"max_price" validate:"gte=0"`
	PageNumber int     `json:"page_number" validate:"gte=0"`
	PageSize   int     `json:"page_size" validate:"gte=0,lte=100"`
	SortBy     string  `json:"sort_by" validate:"omitempty,oneof=name brand price quantity"`
	Ascending  *bool   `json:"ascending"`
	Category   string  `json:"category"`
	SearchBy   string  `json:"search_by"`
}

type AddReviewRequest struct {
	Review string `json:"review" validate:"required,min=1,max=2000"`
}

// ProductPage одна страница выборки товаров
// TotalMatching считается по всем страницам и всегда >= len(Items)
type ProductPage struct {
	Items         []ProductWithCategory `json:"items"`
	TotalMatching int64                 `json:"total_matching"`
	PageNumber    int                   `json:"page_number"`
	PageSize      int                   `json:"page_size"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ProductListResponse struct {
	Products []ProductWithCategory `json:"products"`
	Total    int                   `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}
