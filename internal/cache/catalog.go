package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/booklend/booklend/internal/model"
)

// availableBooksKey holds the serialized available-books listing.
// The listing changes on every borrow, return and catalog mutation,
// so writers invalidate it and the TTL is only a backstop.
const (
	availableBooksKey = "books:available"
	availableBooksTTL = 60 * time.Second
)

var json = jsoniter.ConfigFastest

// GetAvailableBooks returns the cached available-books listing, or
// ErrCacheMiss when absent.
func (c *Cache) GetAvailableBooks(ctx context.Context) ([]*model.Book, error) {
	data, err := c.client.Get(ctx, availableBooksKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get available books: %w", err)
	}

	var books []*model.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to decode cached books: %w", err)
	}

	return books, nil
}

// SetAvailableBooks stores the available-books listing.
func (c *Cache) SetAvailableBooks(ctx context.Context, books []*model.Book) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to encode books: %w", err)
	}

	if err := c.client.Set(ctx, availableBooksKey, data, availableBooksTTL).Err(); err != nil {
		return fmt.Errorf("failed to set available books: %w", err)
	}

	return nil
}

// InvalidateBooks drops the cached listing after a catalog or borrow
// state change.
func (c *Cache) InvalidateBooks(ctx context.Context) error {
	if err := c.client.Del(ctx, availableBooksKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate books cache: %w", err)
	}
	return nil
}
