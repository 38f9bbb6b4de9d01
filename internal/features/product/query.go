package product

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/handlerutils"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type comparison string

const (
	opGt  comparison = "gt"
	opGte comparison = "gte"
	opLt  comparison = "lt"
	opLte comparison = "lte"
	opIn  comparison = "in"
)

// mongoOperators maps the query-string operator vocabulary to the document
// store's operators. Anything outside this set is treated as a plain key and
// dropped by the allow-list.
var mongoOperators = map[comparison]string{
	opGt:  "$gt",
	opGte: "$gte",
	opLt:  "$lt",
	opLte: "$lte",
	opIn:  "$in",
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

// filterableFields is the allow-list of fields a client may filter on,
// with the type their values are coerced to.
var filterableFields = map[string]fieldKind{
	"title":              kindString,
	"category":           kindString,
	"brand":              kindString,
	"sku":                kindString,
	"tags":               kindString,
	"price":              kindNumber,
	"discountPercentage": kindNumber,
	"rating":             kindNumber,
	"numReviews":         kindNumber,
	"stock":              kindNumber,
}

// controlParams are stripped out of the filter map before the predicate is
// built so pagination/sort/search never end up as field constraints.
var controlParams = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
	"search": {},
}

// ListQuery is a bounded catalog query: an allow-listed filter predicate,
// sort order, projection and pagination window.
type ListQuery struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int
	Limit      int
	Skip       int64
}

// parseListQuery translates the inbound query params into a ListQuery.
// Unknown fields and unknown operators are dropped rather than rejected;
// a value of the wrong type for a numeric field is kept as a string and
// simply matches no document.
func parseListQuery(queryParams url.Values) *ListQuery {
	q := &ListQuery{
		Filter: bson.M{},
	}

	for key, values := range queryParams {
		if _, isControl := controlParams[key]; isControl {
			continue
		}
		if len(values) == 0 {
			continue
		}

		field, op := splitFilterKey(key)

		kind, allowed := filterableFields[field]
		if !allowed {
			continue
		}

		q.applyConstraint(field, op, values[0], kind)
	}

	if search := queryParams.Get("search"); search != "" {
		q.Filter["$text"] = bson.M{"$search": search}
	}

	q.Sort = parseSort(queryParams.Get("sort"))
	q.Projection = parseSelect(queryParams.Get("select"))

	q.Page = parsePositiveInt(queryParams.Get("page"), defaultPage)
	q.Limit = parsePositiveInt(queryParams.Get("limit"), defaultLimit)
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	q.Skip = int64(q.Page-1) * int64(q.Limit)

	return q
}

// splitFilterKey splits "price[gte]" into ("price", "gte"). A bare key means
// equality.
func splitFilterKey(key string) (field string, op comparison) {
	open := strings.IndexByte(key, '[')
	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, ""
	}

	return key[:open], comparison(key[open+1 : len(key)-1])
}

func (q *ListQuery) applyConstraint(field string, op comparison, raw string, kind fieldKind) {
	if op == "" {
		q.Filter[field] = coerceValue(raw, kind)
		return
	}

	mongoOp, known := mongoOperators[op]
	if !known {
		return
	}

	constraint, ok := q.Filter[field].(bson.M)
	if !ok {
		constraint = bson.M{}
		q.Filter[field] = constraint
	}

	if op == opIn {
		parts := strings.Split(raw, ",")
		inValues := make([]any, 0, len(parts))
		for _, part := range parts {
			inValues = append(inValues, coerceValue(part, kind))
		}
		constraint[mongoOp] = inValues
		return
	}

	constraint[mongoOp] = coerceValue(raw, kind)
}

func coerceValue(raw string, kind fieldKind) any {
	if kind == kindNumber {
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			return num
		}
	}

	return raw
}

// parseSort turns "-rating,price" into a sort document, descending for keys
// prefixed with '-'. Newest-first when unspecified.
func parseSort(sortParam string) bson.D {
	if sortParam == "" {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	var sort bson.D
	for _, key := range strings.Split(sortParam, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		direction := 1
		if strings.HasPrefix(key, "-") {
			direction = -1
			key = key[1:]
		}

		sort = append(sort, primitive.E{Key: key, Value: direction})
	}

	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	return sort
}

func parseSelect(selectParam string) bson.M {
	if selectParam == "" {
		return nil
	}

	projection := bson.M{}
	for _, field := range strings.Split(selectParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		projection[field] = 1
	}

	if len(projection) == 0 {
		return nil
	}

	return projection
}

func parsePositiveInt(raw string, defaultValue int) int {
	num, err := strconv.Atoi(raw)
	if err != nil || num < 1 {
		return defaultValue
	}

	return num
}

// pagination builds the next/prev descriptors for a listing of total
// records. A descriptor is present only when a page exists in that
// direction.
func (q *ListQuery) pagination(total int64) *handlerutils.Pagination {
	p := &handlerutils.Pagination{}

	if int64(q.Page)*int64(q.Limit) < total {
		p.Next = &handlerutils.PageDescriptor{
			Page:  q.Page + 1,
			Limit: q.Limit,
		}
	}

	if q.Page > 1 {
		p.Prev = &handlerutils.PageDescriptor{
			Page:  q.Page - 1,
			Limit: q.Limit,
		}
	}

	return p
}
