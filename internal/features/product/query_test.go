package product

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func parseQueryString(t *testing.T, rawQuery string) *ListQuery {
	t.Helper()

	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	return parseListQuery(values)
}

func TestParseListQuery_Defaults(t *testing.T) {
	q := parseQueryString(t, "")

	assert.Equal(t, bson.M{}, q.Filter)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.Sort)
	assert.Nil(t, q.Projection)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.EqualValues(t, 0, q.Skip)
}

func TestParseListQuery_ComparisonOperators(t *testing.T) {
	q := parseQueryString(t, "price[gte]=500&price[lte]=1000&stock[gt]=0")

	assert.Equal(t, bson.M{
		"price": bson.M{"$gte": 500.0, "$lte": 1000.0},
		"stock": bson.M{"$gt": 0.0},
	}, q.Filter)
}

func TestParseListQuery_EqualityAndIn(t *testing.T) {
	q := parseQueryString(t, "category=smartphones&brand[in]=Apple,Samsung")

	assert.Equal(t, bson.M{
		"category": "smartphones",
		"brand":    bson.M{"$in": []any{"Apple", "Samsung"}},
	}, q.Filter)
}

func TestParseListQuery_StripsControlParams(t *testing.T) {
	q := parseQueryString(t, "page=3&limit=10&sort=price&select=title&search=iphone&category=phones")

	// none of the control keys may leak into the predicate
	for _, controlKey := range []string{"page", "limit", "sort", "select", "search"} {
		assert.NotContains(t, q.Filter, controlKey)
	}
	assert.Equal(t, "phones", q.Filter["category"])
}

func TestParseListQuery_SearchCombinesWithFilter(t *testing.T) {
	q := parseQueryString(t, "search=iphone&price[gte]=500")

	assert.Equal(t, bson.M{"$search": "iphone"}, q.Filter["$text"])
	assert.Equal(t, bson.M{"$gte": 500.0}, q.Filter["price"])
}

func TestParseListQuery_UnknownFieldsDropped(t *testing.T) {
	q := parseQueryString(t, "password[gte]=1&__proto__=x&category=phones")

	assert.Equal(t, bson.M{"category": "phones"}, q.Filter)
}

func TestParseListQuery_UnknownOperatorDropped(t *testing.T) {
	q := parseQueryString(t, "price[regex]=.*")

	assert.Equal(t, bson.M{}, q.Filter)
}

func TestParseListQuery_MalformedNumberMatchesNothing(t *testing.T) {
	q := parseQueryString(t, "price[gte]=abc")

	// a non-numeric value for a numeric field stays a string and matches
	// no document, mirroring the no-validation-error failure mode
	assert.Equal(t, bson.M{"price": bson.M{"$gte": "abc"}}, q.Filter)
}

func TestParseListQuery_Sort(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bson.D
	}{
		{
			name: "descending prefix",
			raw:  "sort=-rating",
			want: bson.D{{Key: "rating", Value: -1}},
		},
		{
			name: "multiple keys",
			raw:  "sort=-rating,price",
			want: bson.D{
				{Key: "rating", Value: -1},
				{Key: "price", Value: 1},
			},
		},
		{
			name: "unspecified defaults to newest first",
			raw:  "",
			want: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := parseQueryString(t, tt.raw)
			assert.Equal(t, tt.want, q.Sort)
		})
	}
}

func TestParseListQuery_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantPage  int
		wantLimit int
		wantSkip  int64
	}{
		{
			name:      "explicit page and limit",
			raw:       "page=2&limit=10",
			wantPage:  2,
			wantLimit: 10,
			wantSkip:  10,
		},
		{
			name:      "non-numeric falls back to defaults",
			raw:       "page=abc&limit=xyz",
			wantPage:  1,
			wantLimit: 20,
			wantSkip:  0,
		},
		{
			name:      "zero and negative fall back to defaults",
			raw:       "page=0&limit=-5",
			wantPage:  1,
			wantLimit: 20,
			wantSkip:  0,
		},
		{
			name:      "limit is capped",
			raw:       "limit=100000",
			wantPage:  1,
			wantLimit: 100,
			wantSkip:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := parseQueryString(t, tt.raw)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.Equal(t, tt.wantSkip, q.Skip)
		})
	}
}

func TestListQuery_PaginationDescriptors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		total    int64
		wantNext bool
		wantPrev bool
	}{
		{
			name:     "first page of many",
			raw:      "page=1&limit=10",
			total:    25,
			wantNext: true,
			wantPrev: false,
		},
		{
			name:     "middle page",
			raw:      "page=2&limit=10",
			total:    25,
			wantNext: true,
			wantPrev: true,
		},
		{
			name:     "last page",
			raw:      "page=3&limit=10",
			total:    25,
			wantNext: false,
			wantPrev: true,
		},
		{
			name:     "single page",
			raw:      "page=1&limit=10",
			total:    5,
			wantNext: false,
			wantPrev: false,
		},
		{
			name:     "exact page boundary",
			raw:      "page=2&limit=10",
			total:    20,
			wantNext: false,
			wantPrev: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := parseQueryString(t, tt.raw)
			p := q.pagination(tt.total)

			assert.Equal(t, tt.wantNext, p.Next != nil, "next descriptor")
			assert.Equal(t, tt.wantPrev, p.Prev != nil, "prev descriptor")

			if p.Next != nil {
				assert.Equal(t, q.Page+1, p.Next.Page)
				assert.Equal(t, q.Limit, p.Next.Limit)
			}
			if p.Prev != nil {
				assert.Equal(t, q.Page-1, p.Prev.Page)
				assert.Equal(t, q.Limit, p.Prev.Limit)
			}
		})
	}
}

func TestParseListQuery_Select(t *testing.T) {
	q := parseQueryString(t, "select=title,price")

	assert.Equal(t, bson.M{"title": 1, "price": 1}, q.Projection)
}

func TestParseListQuery_PriceRangeSortedPaged(t *testing.T) {
	// GET /products?price[gte]=500&price[lte]=1000&sort=-rating&page=2&limit=10
	q := parseQueryString(t, "price[gte]=500&price[lte]=1000&sort=-rating&page=2&limit=10")

	assert.Equal(t, bson.M{"price": bson.M{"$gte": 500.0, "$lte": 1000.0}}, q.Filter)
	assert.Equal(t, bson.D{{Key: "rating", Value: -1}}, q.Sort)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.EqualValues(t, 10, q.Skip)
}
