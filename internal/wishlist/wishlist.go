// Package wishlist keeps a buyer's saved listings outside the marketplace
// database. Entries are trimmed projections of farm and store posts.
package wishlist

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"farmconnect/internal/models"
)

const keyPrefix = "wishlist"

// Item is the stored projection of a post.
type Item struct {
	ID         string          `json:"id"`
	Type       models.PostType `json:"type"`
	Title      string          `json:"title"`
	Price      float64         `json:"price"`
	Currency   string          `json:"currency,omitempty"`
	Image      string          `json:"image,omitempty"`
	Location   string          `json:"location,omitempty"`
	Category   string          `json:"category,omitempty"`
	SellerName string          `json:"sellerName,omitempty"`
	AddedAt    time.Time       `json:"addedAt"`
}

func firstImage(images []models.Media) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func formatLocation(l models.Location) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.City, l.Region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func categoryName(c models.CategoryRef) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// SanitizeFarmPost projects a farm post onto a wishlist item.
func SanitizeFarmPost(p *models.FarmPost) Item {
	item := Item{
		ID:       p.ID.Hex(),
		Type:     models.PostTypeFarm,
		Title:    p.Title,
		Price:    p.Price,
		Currency: p.Currency,
		Image:    firstImage(p.Images),
		Location: formatLocation(p.Location),
		Category: categoryName(p.Category),
	}
	if p.User != nil {
		item.SellerName = p.User.FullName
	}
	return item
}

// SanitizeStorePost projects a store post onto a wishlist item. The store
// name is preferred over the owner's name.
func SanitizeStorePost(p *models.StorePost) Item {
	item := Item{
		ID:       p.ID.Hex(),
		Type:     models.PostTypeStore,
		Title:    p.Title,
		Price:    p.Pricing.Price,
		Currency: p.Pricing.Currency,
		Image:    firstImage(p.Images),
		Location: formatLocation(p.Location),
		Category: categoryName(p.Category),
	}
	switch {
	case p.Store != nil && p.Store.StoreName != "":
		item.SellerName = p.Store.StoreName
	case p.User != nil:
		item.SellerName = p.User.FullName
	}
	return item
}

// Wishlist is one owner's saved items. Read failures degrade to an empty list.
type Wishlist struct {
	mu      sync.Mutex
	storage Storage
	key     string
	now     func() time.Time
}

// New returns the wishlist of owner kept in storage. An empty owner selects
// the anonymous, device-local list.
func New(storage Storage, owner string) *Wishlist {
	key := keyPrefix
	if owner != "" {
		key += ":" + owner
	}
	return &Wishlist{storage: storage, key: key, now: time.Now}
}

func (w *Wishlist) load() []Item {
	raw, err := w.storage.Get(w.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("wishlist read failed", slog.String("key", w.key), slog.String("error", err.Error()))
		}
		return []Item{}
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("wishlist is corrupt, starting empty", slog.String("key", w.key), slog.String("error", err.Error()))
		return []Item{}
	}
	if items == nil {
		items = []Item{}
	}
	return items
}

// save writes items and reports whether the write succeeded. Failures are
// logged and leave the stored list as it was.
func (w *Wishlist) save(items []Item) bool {
	raw, err := json.Marshal(items)
	if err == nil {
		err = w.storage.Set(w.key, string(raw))
	}
	if err != nil {
		slog.Error("wishlist write failed", slog.String("key", w.key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Items returns the saved items, oldest first.
func (w *Wishlist) Items() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load()
}

// Add saves item unless an item with the same id is already present.
// It reports whether the list changed; a failed write reports false.
// The only error is a missing item id.
func (w *Wishlist) Add(item Item) (bool, error) {
	if item.ID == "" {
		return false, errors.New("wishlist: item id is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.load()
	for _, it := range items {
		if it.ID == item.ID {
			return false, nil
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = w.now().UTC()
	}
	return w.save(append(items, item)), nil
}

// Remove deletes the item with the given id. It reports whether one was
// removed and stored.
func (w *Wishlist) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.load()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false
	}
	return w.save(kept)
}

// Clear removes every item. It reports whether the stored list was removed.
func (w *Wishlist) Clear() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.storage.Remove(w.key); err != nil {
		slog.Error("wishlist clear failed", slog.String("key", w.key), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (w *Wishlist) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, it := range w.load() {
		if it.ID == id {
			return true
		}
	}
	return false
}
