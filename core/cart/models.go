package cart

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core/lesson"
)

// StorageKey is the durable storage key holding the serialized cart.
const StorageKey = "cart"

// Item is a snapshot of a lesson taken when it was added to the cart.
type Item struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Price      lesson.Price `json:"price"`
	ClassLevel string       `json:"classLevel"`
}

func NewItem(l lesson.Lesson) Item {
	return Item{
		ID:         l.ID,
		Title:      l.Title,
		Price:      l.Price,
		ClassLevel: l.ClassLevel,
	}
}

func encodeItems(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", errors.Wrap(err, "encoding cart")
	}
	return string(data), nil
}

// decodeItems parses a serialized cart, dropping entries without an id and duplicates.
func decodeItems(data string) ([]Item, error) {
	var raw []Item
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, errors.Wrap(err, "decoding cart")
	}
	items := make([]Item, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, it := range raw {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items, nil
}
