package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/storage"
	"github.com/shopspring/decimal"
)

// StorageKey is where the cart lives in the local store
const StorageKey = "cart"

// ErrItemNotFound is returned when a cart item id is unknown
var ErrItemNotFound = errors.New("cart item not found")

// Summary holds the values derived from the item list
type Summary struct {
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalWeight int             `json:"totalWeight"`
	Lines       int             `json:"lines"`
}

// Store is the client-persisted cart. The in-memory list is authoritative;
// every mutation rewrites the whole list to storage (last write wins).
type Store struct {
	mu        sync.RWMutex
	items     []models.CartItem
	storage   storage.Store
	now       func() time.Time
	listeners []func(Summary)
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for item ids and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore loads the persisted cart. Unreadable storage yields an empty cart.
func NewStore(st storage.Store, opts ...Option) *Store {
	s := &Store{storage: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load()
	return s
}

func (s *Store) load() []models.CartItem {
	var items []models.CartItem
	found, err := storage.GetJSON(s.storage, StorageKey, &items)
	if err != nil {
		slog.Warn("Failed to load cart from storage, starting empty", "error", err)
		return []models.CartItem{}
	}
	if !found {
		return []models.CartItem{}
	}

	// Drop anything a hand-edited or older file may contain that breaks the invariants
	valid := items[:0]
	for _, item := range items {
		if item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	slog.Debug("Cart loaded from storage", "lines", len(valid))
	return valid
}

// Subscribe registers fn to be called after every mutation
func (s *Store) Subscribe(fn func(Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddToCart adds quantity of a variant, merging with an existing line for the
// same product and variant. A quantity below 1 adds one.
func (s *Store) AddToCart(product models.Product, variant models.ProductVariant, quantity int) []models.CartItem {
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].Product.ID == product.ID && items[i].Variant.ID == variant.ID {
				items[i].Quantity += quantity
				return items
			}
		}

		now := s.now()
		return append(items, models.CartItem{
			ID:       fmt.Sprintf("%s-%s-%d", product.ID, variant.ID, now.UnixMilli()),
			Product:  product,
			Variant:  variant,
			Quantity: quantity,
			AddedAt:  now,
		})
	})
}

// UpdateQuantity sets an item's quantity exactly; quantity <= 0 removes it
func (s *Store) UpdateQuantity(itemID string, quantity int) []models.CartItem {
	if quantity <= 0 {
		return s.RemoveItem(itemID)
	}

	return s.mutate(func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = quantity
				break
			}
		}
		return items
	})
}

// RemoveItem removes an item by id
func (s *Store) RemoveItem(itemID string) []models.CartItem {
	return s.mutate(func(items []models.CartItem) []models.CartItem {
		kept := items[:0]
		for _, item := range items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		return kept
	})
}

// ClearCart empties the cart. Called after a confirmed order.
func (s *Store) ClearCart() []models.CartItem {
	return s.mutate(func([]models.CartItem) []models.CartItem {
		return []models.CartItem{}
	})
}

// mutate applies fn to a private copy, swaps it in, persists and notifies
func (s *Store) mutate(fn func([]models.CartItem) []models.CartItem) []models.CartItem {
	s.mu.Lock()
	next := fn(cloneItems(s.items))
	s.items = next
	s.persistLocked()
	summary := summarize(next)
	result := cloneItems(next)
	listeners := append([]func(Summary){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
	return result
}

func (s *Store) persistLocked() {
	if err := storage.SetJSON(s.storage, StorageKey, s.items); err != nil {
		slog.Warn("Failed to persist cart, keeping in-memory copy", "error", err)
	}
}

// Items returns a copy of the current items
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Item returns one item by id
func (s *Store) Item(itemID string) (models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return models.CartItem{}, ErrItemNotFound
}

// ItemCount is the sum of quantities
func (s *Store) ItemCount() int {
	return s.Summary().ItemCount
}

// Subtotal is the sum of sellingPrice x quantity, before MRP discount and coupon
func (s *Store) Subtotal() decimal.Decimal {
	return s.Summary().Subtotal
}

// TotalWeight is the parcel weight in grams
func (s *Store) TotalWeight() int {
	return s.Summary().TotalWeight
}

// Summary returns all derived values at once
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summarize(s.items)
}

func summarize(items []models.CartItem) Summary {
	sum := Summary{Subtotal: decimal.Zero, Lines: len(items)}
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		sum.ItemCount += item.Quantity
		sum.Subtotal = sum.Subtotal.Add(item.Variant.SellingPrice.Mul(qty))
		sum.TotalWeight += item.Variant.Weight * item.Quantity
	}
	return sum
}

func cloneItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
