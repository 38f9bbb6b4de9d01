package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

const (
	cacheTTL         = 5 * time.Minute
	notFoundTTL      = 1 * time.Minute
	notFoundSentinel = "notfound"
)

// CachedStore is a cache-aside decorator over the product store. Only the
// by-ID lookup is cached; list queries are too varied to key usefully.
// Redis being down degrades to plain store reads, it never fails a request.
type CachedStore struct {
	store *Store
	redis *redis.Client
}

func NewCachedStore(store *Store, redisClient *redis.Client) *CachedStore {
	return &CachedStore{
		store: store,
		redis: redisClient,
	}
}

func (c *CachedStore) EnsureIndexes(ctx context.Context) error {
	return c.store.EnsureIndexes(ctx)
}

func productKey(productID primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", productID.Hex())
}

func (c *CachedStore) findByID(ctx context.Context, productID primitive.ObjectID) (*Product, error) {
	key := productKey(productID)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundSentinel {
			return nil, servererrors.ErrProductNotFound
		}

		var cachedProduct Product
		if err := json.Unmarshal(data, &cachedProduct); err != nil {
			log.Printf("failed to unmarshal cached product (continuing with db): %v", err)
			break
		}

		return &cachedProduct, nil

	case errors.Is(err, redis.Nil):

	default:
		log.Printf("redis error (continuing with db): %v", err)
	}

	foundProduct, err := c.store.findByID(ctx, productID)
	if err != nil {
		if errors.Is(err, servererrors.ErrProductNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundSentinel, notFoundTTL).Err(); setErr != nil {
				log.Printf("failed to cache notfound: %v", setErr)
			}
		}
		return nil, err
	}

	c.cacheProduct(ctx, key, foundProduct)

	return foundProduct, nil
}

func (c *CachedStore) cacheProduct(ctx context.Context, key string, p *Product) {
	jsonData, err := json.Marshal(p)
	if err != nil {
		log.Printf("failed to marshal product for cache: %v", err)
		return
	}

	if err := c.redis.Set(ctx, key, jsonData, cacheTTL).Err(); err != nil {
		log.Printf("failed to cache product: %v", err)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, productID primitive.ObjectID) {
	if err := c.redis.Del(ctx, productKey(productID)).Err(); err != nil {
		log.Printf("failed to invalidate product cache: %v", err)
	}
}

func (c *CachedStore) createOne(ctx context.Context, newProduct *Product) error {
	return c.store.createOne(ctx, newProduct)
}

func (c *CachedStore) findAll(ctx context.Context, query *ListQuery) ([]*Product, int64, error) {
	return c.store.findAll(ctx, query)
}

func (c *CachedStore) updateOne(ctx context.Context, productID primitive.ObjectID, fields bson.M) (*Product, error) {
	updatedProduct, err := c.store.updateOne(ctx, productID, fields)
	c.invalidate(ctx, productID)

	return updatedProduct, err
}

func (c *CachedStore) deleteOne(ctx context.Context, productID primitive.ObjectID) error {
	err := c.store.deleteOne(ctx, productID)
	c.invalidate(ctx, productID)

	return err
}

func (c *CachedStore) updateRating(ctx context.Context, productID primitive.ObjectID, rating float64, numReviews int) error {
	err := c.store.updateRating(ctx, productID, rating, numReviews)
	c.invalidate(ctx, productID)

	return err
}

func (c *CachedStore) decrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	updatedProduct, err := c.store.decrementStock(ctx, productID, quantity)
	c.invalidate(ctx, productID)

	return updatedProduct, err
}

func (c *CachedStore) incrementStock(ctx context.Context, productID primitive.ObjectID, quantity int) (*Product, error) {
	updatedProduct, err := c.store.incrementStock(ctx, productID, quantity)
	c.invalidate(ctx, productID)

	return updatedProduct, err
}
