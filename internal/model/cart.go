package model

// CartItem is a single cart line submitted per request. It has no
// independent lifecycle.
type CartItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}
