package coupon

import "coupon-api/internal/model"

// MergeCarts combines a session's previously stored order items with
// newly submitted cart items. Items are folded by id: the first
// occurrence of an id establishes the merged entry verbatim (including
// its price and name), and every later occurrence of the same id only
// adds its qty. Output order is the order of first appearance.
// A price change between the original order and a later cart submission
// therefore does not reprice already-ordered items.
func MergeCarts(previous, submitted []model.CartItem) []model.CartItem {
	merged := make([]model.CartItem, 0, len(previous)+len(submitted))
	index := make(map[string]int, len(previous)+len(submitted))

	for _, item := range append(append([]model.CartItem{}, previous...), submitted...) {
		if i, seen := index[item.ID]; seen {
			merged[i].Qty += item.Qty
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

// Subtotal returns the sum of price times qty over the given items.
func Subtotal(items []model.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Qty)
	}
	return total
}
