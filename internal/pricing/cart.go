package pricing

import (
	"fmt"

	"cardapio/internal/models"
	"cardapio/internal/money"
)

// LineItem is one cart line. ID is the entry id, or "entryID-size" for
// sized products so that each size gets its own line.
type LineItem struct {
	ID         string  `json:"id"`
	EntryID    string  `json:"entryId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Size       string  `json:"size,omitempty"`
	CategoryID string  `json:"categoryId,omitempty"`
	IsCombo    bool    `json:"isCombo"`
	ImageURL   string  `json:"imageUrl,omitempty"`
}

// Cart is an ordered list of lines. Methods never modify the receiver;
// they return a new Cart.
type Cart []LineItem

// LineID builds the identity key of a cart line.
func LineID(entryID, size string) string {
	if size == "" {
		return entryID
	}
	return entryID + "-" + size
}

// Add puts one unit of the entry in the cart. Entries with several sizes
// need the size chosen beforehand; a single size is picked automatically.
// Adding an existing line bumps its quantity and keeps its original price.
func (c Cart) Add(e Entry, size string) (Cart, error) {
	line, err := newLine(e, size)
	if err != nil {
		return c, err
	}
	return c.merge(line), nil
}

// AddLine appends a prepared line, merging on ID like Add.
func (c Cart) AddLine(line LineItem) Cart {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	for i := range c {
		if c[i].ID == line.ID {
			next := c.clone()
			next[i].Quantity += line.Quantity
			return next
		}
	}
	return append(c.clone(), line)
}

// ChangeQuantity adds delta to a line, never going below one.
func (c Cart) ChangeQuantity(lineID string, delta int) (Cart, error) {
	for i := range c {
		if c[i].ID == lineID {
			next := c.clone()
			next[i].Quantity = max(1, next[i].Quantity+delta)
			return next, nil
		}
	}
	return c, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// Remove drops a line. Removing an unknown line is a no-op.
func (c Cart) Remove(lineID string) Cart {
	next := make(Cart, 0, len(c))
	for _, line := range c {
		if line.ID != lineID {
			next = append(next, line)
		}
	}
	return next
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Find returns the line with the given id.
func (c Cart) Find(lineID string) (LineItem, bool) {
	for _, line := range c {
		if line.ID == lineID {
			return line, true
		}
	}
	return LineItem{}, false
}

func (c Cart) merge(line LineItem) Cart {
	for i := range c {
		if c[i].ID == line.ID {
			next := c.clone()
			next[i].Quantity++
			return next
		}
	}
	return append(c.clone(), line)
}

func (c Cart) clone() Cart {
	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return next
}

func newLine(e Entry, size string) (LineItem, error) {
	line := LineItem{
		EntryID:    e.EntryID(),
		Name:       e.EntryName(),
		Quantity:   1,
		CategoryID: e.CategoryKey(),
		IsCombo:    e.Kind() == KindCombo,
		ImageURL:   e.Image(),
	}

	variants := e.Variants()
	switch {
	case len(variants) == 0:
		line.ID = LineID(line.EntryID, "")
		line.Price = money.Sanitize(e.DisplayPrice())
		return line, nil
	case len(variants) == 1 && size == "":
		size = variants[0].Size
	case size == "":
		return LineItem{}, ErrSizeRequired
	}

	chosen, ok := findSize(variants, size)
	if !ok {
		return LineItem{}, fmt.Errorf("%w: %s", ErrUnknownSize, size)
	}
	line.ID = LineID(line.EntryID, chosen.Size)
	line.Name = fmt.Sprintf("%s (%s)", line.Name, chosen.Size)
	line.Price = money.Sanitize(chosen.Price.Float())
	line.Size = chosen.Size
	return line, nil
}

func findSize(sizes []models.Size, label string) (models.Size, bool) {
	for _, s := range sizes {
		if s.Size == label {
			return s, true
		}
	}
	return models.Size{}, false
}
