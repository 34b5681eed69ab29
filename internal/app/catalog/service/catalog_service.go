package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"ecomcatalog/internal/app/catalog/entity"
	"ecomcatalog/internal/app/catalog/repository"
	"ecomcatalog/internal/app/catalog/util"
	"ecomcatalog/pkg/logger"
	"ecomcatalog/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductAlreadyExists  = errors.New("product with this id already exists")
	ErrNoProducts            = errors.New("no products found")
)

const (
	defaultPageSize    = 10
	featuredLimit      = 5
	categoriesCacheTTL = time.Hour
)

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует репозитории, Redis кеш списка категорий и Kafka producer.
// Состояние между запросами не хранится: каждое разрешение имени категории
// заново читает хранилище, так как категории могут быть удалены между вызовами.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CategoryCache
	events       util.MessagePublisher
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	events util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		events:       events,
	}
}

// === CATEGORIES ===

// AddCategory создает новую категорию
// Уникальность имени проверяется явно перед вставкой: хранилище constraint
// на имя не накладывает. Гонка между проверкой и вставкой принята осознанно.
func (s *CatalogService) AddCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if _, err := s.categoryRepo.GetByName(ctx, req.Name); err == nil {
		return nil, ErrCategoryAlreadyExists
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	category := &entity.Category{
		ID:   uuid.NewString(),
		Name: req.Name,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Инвалидируем кеш списка категорий, данные уже сохранены - ошибка кеша не критична
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}

	return category, nil
}

// GetAllCategories получает все категории с кешированием списка в Redis
// Кешируется только ответ этого эндпоинта: пути разрешения имени в ID
// всегда читают хранилище напрямую и кешем не пользуются
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// RefreshCategoriesCache принудительно перечитывает список категорий в кеш
// Вызывается cron-задачей для прогрева кеша
func (s *CatalogService) RefreshCategoriesCache(ctx context.Context) error {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}

	return nil
}

// DeleteCategory безусловно удаляет категорию
// Каскадного удаления товаров нет: товары с ссылкой на удаленную категорию
// остаются и при чтении получают пустое имя категории
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}

	return nil
}

// ResolveCategoryID разрешает имя категории в ID
// Поиск чувствителен к регистру, отсутствие категории отдается ошибкой,
// чтобы вызывающий мог отличить «не найдено» от валидного пустого результата
func (s *CatalogService) ResolveCategoryID(ctx context.Context, name string) (string, error) {
	category, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return "", ErrCategoryNotFound
		}
		return "", fmt.Errorf("failed to resolve category id: %w", err)
	}

	return category.ID, nil
}

// ResolveCategoryName разрешает ID категории в человекочитаемое имя
func (s *CatalogService) ResolveCategoryName(ctx context.Context, id string) (string, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return "", ErrCategoryNotFound
		}
		return "", fmt.Errorf("failed to resolve category name: %w", err)
	}

	return category.Name, nil
}

// === PRODUCTS ===

// AddProduct создает новый товар
// Если в запросе передан ID, дубликат проверяется явно перед вставкой.
// Имя категории разрешается в ID, несуществующая категория - ошибка,
// товар при этом не создается.
func (s *CatalogService) AddProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else {
		if _, err := s.productRepo.GetByID(ctx, id); err == nil {
			return nil, ErrProductAlreadyExists
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("failed to check product id: %w", err)
		}
	}

	categoryID, err := s.ResolveCategoryID(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:         id,
		Name:       req.Name,
		Brand:      req.Brand,
		Price:      req.Price,
		CategoryID: categoryID,
		Quantity:   req.Quantity,
		ImageURL:   req.ImageURL,
		Features:   req.Features,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			return nil, ErrProductAlreadyExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	s.publishProductEvent(ctx, "PRODUCT_CREATED", product, req.Category)

	return product, nil
}

// GetProduct получает товар по ID с разрешенным именем категории
// Ссылка на удаленную категорию не ошибка: имя остается пустым
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.ProductWithCategory, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	view := s.withCategoryNames(ctx, []entity.Product{*product})

	return &view[0], nil
}

// GetAllProducts получает все товары с именами категорий
// Пустой каталог отдается как ErrNoProducts для listing-эндпоинта
func (s *CatalogService) GetAllProducts(ctx context.Context) ([]entity.ProductWithCategory, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	return s.withCategoryNames(ctx, products), nil
}

// GetFilteredProducts выполняет фильтрованную постраничную выборку товаров
// Пустая страница для listing-запроса считается ошибкой «ничего не найдено»,
// сама примитивная выборка при этом никогда не ошибается на пустом результате
func (s *CatalogService) GetFilteredProducts(ctx context.Context, req *entity.FilterProductsRequest) (*entity.ProductPage, error) {
	query, pageNumber, pageSize := s.buildProductQuery(ctx, req)

	products, total, err := s.productRepo.FindFiltered(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	return &entity.ProductPage{
		Items:         s.withCategoryNames(ctx, products),
		TotalMatching: total,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
	}, nil
}

// GetFeaturedProducts возвращает топ-5 товаров по количеству отзывов
// Пустой результат валиден для примитива, решение об ошибке за handler
func (s *CatalogService) GetFeaturedProducts(ctx context.Context) ([]entity.ProductWithCategory, error) {
	products, err := s.productRepo.GetFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}

	return s.withCategoryNames(ctx, products), nil
}

// UpdateProduct перезаписывает товар по ID
// Существующий список отзывов сохраняется: запрос на обновление его не несет
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *entity.ProductRequest) (*entity.Product, error) {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	categoryID, err := s.ResolveCategoryID(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:         id,
		Name:       req.Name,
		Brand:      req.Brand,
		Price:      req.Price,
		CategoryID: categoryID,
		Quantity:   req.Quantity,
		ImageURL:   req.ImageURL,
		Features:   req.Features,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_UPDATED", product, req.Category)

	return product, nil
}

// DeleteProduct удаляет товар по ID
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_DELETED", product, "")

	return nil
}

// === REVIEWS ===

// AddReview дописывает отзыв в конец списка отзывов товара
// Добавление выполняется атомарным append на уровне хранилища,
// конкурирующие отзывы к одному товару не теряются
func (s *CatalogService) AddReview(ctx context.Context, productID string, review string) error {
	if err := s.productRepo.AppendReview(ctx, productID, review); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add review: %w", err)
	}

	metrics.ReviewsAdded.Inc()

	return nil
}

// === HELPERS ===

// buildProductQuery переводит параметры запроса в конъюнкцию предикатов
// плюс пагинацию и сортировку. Каждый предикат добавляется только когда
// его guard-условие выполнено, пустой запрос совпадает со всеми товарами.
// Возвращает также нормализованные номер и размер страницы.
func (s *CatalogService) buildProductQuery(ctx context.Context, req *entity.FilterProductsRequest) (repository.ProductQuery, int, int) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageNumber := req.PageNumber
	if pageNumber < 0 {
		pageNumber = 0
	}

	minPrice := req.MinPrice
	maxPrice := req.MaxPrice
	if maxPrice <= 0 {
		// Верхняя граница не задана - sentinel «без ограничения»
		maxPrice = math.Inf(1)
	}

	var predicates []repository.Predicate

	// Поиск по имени - точное совпадение, не подстрока
	if req.SearchBy != "" {
		predicates = append(predicates, repository.EqualsPredicate{
			Field: "name",
			Value: req.SearchBy,
		})
	}

	// Ценовой предикат только если задана хотя бы одна реальная граница,
	// иначе бессмысленный скан с no-op условием
	if minPrice > 0 || !math.IsInf(maxPrice, 1) {
		predicates = append(predicates, repository.RangePredicate{
			Field: "price",
			Min:   minPrice,
			Max:   maxPrice,
		})
	}

	if req.Category != "" {
		categoryID, err := s.ResolveCategoryID(ctx, req.Category)
		if err != nil {
			// Несуществующее имя категории - не ошибка запроса:
			// пустой sentinel-ID гарантированно ничего не совпадет
			categoryID = ""
		}
		predicates = append(predicates, repository.EqualsPredicate{
			Field: "category_id",
			Value: categoryID,
		})
	}

	ascending := req.Ascending == nil || *req.Ascending

	return repository.ProductQuery{
		Predicates: predicates,
		SortBy:     req.SortBy,
		Ascending:  ascending,
		Skip:       int64(pageNumber) * int64(pageSize),
		Limit:      int64(pageSize),
	}, pageNumber, pageSize
}

// withCategoryNames разрешает ID категорий в имена для отдачи наружу
// Имена запрашиваются по одному разу на категорию в пределах запроса,
// между запросами ничего не кешируется
func (s *CatalogService) withCategoryNames(ctx context.Context, products []entity.Product) []entity.ProductWithCategory {
	names := make(map[string]string)

	result := make([]entity.ProductWithCategory, 0, len(products))
	for _, p := range products {
		name, ok := names[p.CategoryID]
		if !ok {
			name, _ = s.ResolveCategoryName(ctx, p.CategoryID) // Orphaned ref дает пустое имя
			names[p.CategoryID] = name
		}
		result = append(result, entity.ProductWithCategory{
			Product:  p,
			Category: name,
		})
	}

	return result
}

// publishProductEvent отправляет событие о товаре в Kafka
// Key - ProductID для партиционирования, ошибки отправки не прерывают
// основную операцию и только логируются
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product, categoryName string) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Brand:     product.Brand,
		Category:  categoryName,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal product event")
		return
	}

	if err := s.events.PublishMessage(ctx, product.ID, eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish product event")
	}
}
