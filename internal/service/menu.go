package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
)

// MenuItem is one sellable entry as shown on the menu.
type MenuItem struct {
	Kind          pricing.Kind       `json:"kind"`
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	CategoryID    string             `json:"categoryId"`
	Description   string             `json:"description,omitempty"`
	ImageURL      string             `json:"imageUrl,omitempty"`
	Price         float64            `json:"price"`
	OriginalPrice float64            `json:"originalPrice,omitempty"`
	Sizes         []models.Size      `json:"sizes,omitempty"`
	Items         []models.ComboItem `json:"items,omitempty"`
}

type Menu struct {
	Categories []models.Category `json:"categories"`
	Items      []MenuItem        `json:"items"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// BuildMenu turns the visible catalog into the public menu with one display
// price per entry.
func BuildMenu(v pricing.Visible, now time.Time) Menu {
	menu := Menu{
		Categories: v.Categories,
		Items:      make([]MenuItem, 0, len(v.Products)+len(v.Combos)),
		UpdatedAt:  now,
	}
	for _, entry := range v.Entries() {
		item := MenuItem{
			Kind:       entry.Kind(),
			ID:         entry.EntryID(),
			Name:       entry.EntryName(),
			CategoryID: entry.CategoryKey(),
			ImageURL:   entry.Image(),
			Price:      pricing.ComputePrice(entry),
			Sizes:      entry.Variants(),
		}
		switch e := entry.(type) {
		case pricing.ProductEntry:
			item.Description = e.Product.Description
		case pricing.ComboEntry:
			item.Description = e.Combo.Description
			item.Items = e.Combo.Items
			if e.Combo.OriginalPrice != nil && e.Combo.OriginalPrice.Float() > item.Price {
				item.OriginalPrice = e.Combo.OriginalPrice.Float()
			}
		}
		menu.Items = append(menu.Items, item)
	}
	return menu
}

// Watchable is a collection that can report changes. onError is called
// when a subscription that already started stops delivering them.
type Watchable interface {
	Subscribe(ctx context.Context, onChange func(), onError func(error)) (func(), error)
}

// MenuFeed recomputes the menu whenever the catalog changes and pushes it to
// every subscriber. Bursts of changes collapse into one recomputation.
type MenuFeed struct {
	source MenuSource
	now    func() time.Time

	refresh chan struct{}

	mu          sync.Mutex
	current     *Menu
	subscribers map[chan Menu]struct{}
}

func NewMenuFeed(source MenuSource) *MenuFeed {
	return &MenuFeed{
		source:      source,
		now:         time.Now,
		refresh:     make(chan struct{}, 1),
		subscribers: make(map[chan Menu]struct{}),
	}
}

// Notify asks for a recomputation. It never blocks.
func (f *MenuFeed) Notify() {
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// Run computes the menu once and then after every Notify until ctx ends.
func (f *MenuFeed) Run(ctx context.Context) {
	f.recompute(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.refresh:
			f.recompute(ctx)
		}
	}
}

// Watch subscribes Notify to every source. When change streams are not
// available, or one of them fails later, it closes the others and polls
// every interval instead.
func (f *MenuFeed) Watch(ctx context.Context, interval time.Duration, sources ...Watchable) func() {
	watchCtx, cancel := context.WithCancel(ctx)

	var (
		mu       sync.Mutex
		stops    []func()
		closed   bool
		fallback sync.Once
	)
	stopAll := func() {
		mu.Lock()
		defer mu.Unlock()
		closed = true
		for _, stop := range stops {
			stop()
		}
		stops = nil
	}
	toPolling := func(err error) {
		fallback.Do(func() {
			zap.L().Warn("menu feed: change stream unavailable, polling instead",
				zap.Duration("interval", interval), zap.Error(err))
			stopAll()
			f.Notify()
			go f.poll(watchCtx, interval)
		})
	}

	for _, src := range sources {
		stop, err := src.Subscribe(watchCtx, f.Notify, toPolling)
		if err != nil {
			toPolling(err)
			break
		}
		mu.Lock()
		if closed {
			stop()
		} else {
			stops = append(stops, stop)
		}
		mu.Unlock()
	}

	return func() {
		cancel()
		stopAll()
	}
}

func (f *MenuFeed) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Notify()
		}
	}
}

// Subscribe returns a channel that receives the current menu right away,
// when known, and every later one. Slow readers miss intermediate menus,
// never the latest.
func (f *MenuFeed) Subscribe() (<-chan Menu, func()) {
	ch := make(chan Menu, 1)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	if f.current != nil {
		ch <- *f.current
	}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
		})
	}
}

// Current returns the last computed menu.
func (f *MenuFeed) Current() (Menu, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Menu{}, false
	}
	return *f.current, true
}

func (f *MenuFeed) recompute(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	visible, err := f.source.Menu(queryCtx)
	if err != nil {
		zap.L().Warn("menu feed: recompute failed", zap.Error(err))
		return
	}
	menu := BuildMenu(visible, f.now())

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &menu
	for ch := range f.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- menu:
		default:
		}
	}
}
