package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buger/jsonparser"

	"github.com/staffbook/staffbook/internal/application/query"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/pkg/circuitbreaker"
	"github.com/staffbook/staffbook/pkg/logger"
)

// CardCache stores staff cards. It satisfies query.CardCache and the
// command package's invalidator.
type CardCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

var _ query.CardCache = (*CardCache)(nil)

// NewCardCache creates a card cache. A zero ttl uses TTLStaffCard.
func NewCardCache(cache *Cache, ttl time.Duration) *CardCache {
	if ttl <= 0 {
		ttl = TTLStaffCard
	}
	return &CardCache{cache: cache, ttl: ttl, log: logger.Nop()}
}

// WithBreaker routes every Redis call through cb. While cb is open, reads
// report a miss and writes are skipped.
func (c *CardCache) WithBreaker(cb *circuitbreaker.CircuitBreaker) *CardCache {
	c.breaker = cb
	return c
}

// WithLogger sets where failures the cache absorbs are reported.
func (c *CardCache) WithLogger(log *logger.Logger) *CardCache {
	if log != nil {
		c.log = log.With(logger.Component("card_cache"))
	}
	return c
}

func (c *CardCache) guard(ctx context.Context, fn func(context.Context) error) error {
	if c.breaker == nil {
		return fn(ctx)
	}
	return c.breaker.Execute(ctx, fn)
}

// Get returns the cached card, or query.ErrCacheMiss.
func (c *CardCache) Get(ctx context.Context, id string) (*query.StaffCardDTO, error) {
	var (
		data []byte
		miss bool
	)
	err := c.guard(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.cache.GetBytes(ctx, StaffKey(id))
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	switch {
	case circuitbreaker.IsRejected(err):
		return nil, query.ErrCacheMiss
	case err != nil:
		return nil, err
	case miss:
		return nil, query.ErrCacheMiss
	}

	card, err := DecodeCard(data)
	if err != nil {
		// A value we cannot read is as good as absent.
		c.log.Warn("dropping unreadable card", logger.StaffID(id), logger.Err(err))
		delErr := c.guard(ctx, func(ctx context.Context) error {
			return c.cache.Delete(ctx, StaffKey(id))
		})
		if delErr != nil {
			c.log.Warn("failed to drop unreadable card", logger.StaffID(id), logger.Err(delErr))
		}
		return nil, query.ErrCacheMiss
	}
	return card, nil
}

// Set stores card under its staff ID.
func (c *CardCache) Set(ctx context.Context, card query.StaffCardDTO) error {
	err := c.guard(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, StaffKey(card.ID), card, c.ttl)
	})
	if circuitbreaker.IsRejected(err) {
		return nil
	}
	return err
}

// Invalidate drops the cards of the given staff IDs. Unlike Set, a
// rejected call is reported: the cards it meant to drop may be stale.
func (c *CardCache) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, StaffKey(id))
	}
	return c.guard(ctx, func(ctx context.Context) error {
		return c.cache.Delete(ctx, keys...)
	})
}

// DecodeCard reads a card written by Set. Null first and last names
// decode as nil, keeping a cleared name distinct from an empty one.
func DecodeCard(data []byte) (*query.StaffCardDTO, error) {
	var card query.StaffCardDTO
	var err error

	if card.ID, err = jsonparser.GetString(data, "id"); err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrCacheSerialization, err)
	}
	kind, err := jsonparser.GetString(data, "kind")
	if err != nil {
		return nil, fmt.Errorf("%w: kind: %v", ErrCacheSerialization, err)
	}
	card.Kind = employee.Kind(kind)
	if !card.Kind.IsValid() {
		return nil, fmt.Errorf("%w: kind %q", ErrCacheSerialization, kind)
	}

	if card.First, err = nullableString(data, "first"); err != nil {
		return nil, err
	}
	if card.Last, err = nullableString(data, "last"); err != nil {
		return nil, err
	}

	card.Fullname = optionalString(data, "fullname")
	card.Email = optionalString(data, "email")
	card.Repr = optionalString(data, "repr")
	card.Display = optionalString(data, "display")
	card.Language = optionalString(data, "language")

	pay, err := jsonparser.GetInt(data, "pay")
	if err != nil {
		return nil, fmt.Errorf("%w: pay: %v", ErrCacheSerialization, err)
	}
	card.Pay = int(pay)

	if rate, err := jsonparser.GetFloat(data, "raise_rate"); err == nil {
		card.RaiseRate = rate
	}

	var reportErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if reportErr != nil {
			return
		}
		if dataType != jsonparser.String {
			reportErr = fmt.Errorf("%w: report is %s", ErrCacheSerialization, dataType)
			return
		}
		name, perr := jsonparser.ParseString(value)
		if perr != nil {
			reportErr = perr
			return
		}
		card.Reports = append(card.Reports, name)
	}, "reports")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("%w: reports: %v", ErrCacheSerialization, err)
	}
	if reportErr != nil {
		return nil, reportErr
	}

	return &card, nil
}

func nullableString(data []byte, key string) (*string, error) {
	value, dataType, _, err := jsonparser.Get(data, key)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheSerialization, key, err)
	}

	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCacheSerialization, key, err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrCacheSerialization, key, dataType)
	}
}

func optionalString(data []byte, key string) string {
	s, err := jsonparser.GetString(data, key)
	if err != nil {
		return ""
	}
	return s
}
