package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Predicate одно условие фильтра по полю документа
// Набор вариантов закрыт: равенство и диапазон. Сервис добавляет предикат
// в запрос только когда его guard-условие выполнено, поэтому исполнителю
// не нужны никакие проверки «а задан ли фильтр».
type Predicate interface {
	criteria() bson.M
}

// EqualsPredicate точное совпадение значения поля (не подстрока)
type EqualsPredicate struct {
	Field string
	Value interface{}
}

func (p EqualsPredicate) criteria() bson.M {
	return bson.M{p.Field: p.Value}
}

// RangePredicate попадание числового поля в отрезок [Min, Max]
type RangePredicate struct {
	Field string
	Min   float64
	Max   float64
}

func (p RangePredicate) criteria() bson.M {
	return bson.M{p.Field: bson.M{"$gte": p.Min, "$lte": p.Max}}
}

// ProductQuery конъюнкция предикатов плюс сортировка и пагинация,
// готовая к выполнению против коллекции товаров
type ProductQuery struct {
	Predicates []Predicate
	SortBy     string // Пустая строка - естественный порядок хранилища
	Ascending  bool
	Skip       int64
	Limit      int64
}

// Filter сворачивает предикаты в единый $and-документ
// Пустой список предикатов дает пустой фильтр, совпадающий со всеми товарами
func (q ProductQuery) Filter() bson.M {
	if len(q.Predicates) == 0 {
		return bson.M{}
	}

	and := make(bson.A, 0, len(q.Predicates))
	for _, p := range q.Predicates {
		and = append(and, p.criteria())
	}

	return bson.M{"$and": and}
}

// FindOptions переводит пагинацию и сортировку в опции mongo Find
func (q ProductQuery) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(q.Skip).SetLimit(q.Limit)

	if q.SortBy != "" {
		direction := 1
		if !q.Ascending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: q.SortBy, Value: direction}})
	}

	return opts
}
