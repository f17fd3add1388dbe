package goldprice

import "time"

// EventPrice is the server event carrying a price tick.
const EventPrice = "gold_price"

// Price is one gold price tick. Currency fields other than USD are optional.
type Price struct {
	Price            float64   `json:"price"`
	PricePerOunce    float64   `json:"pricePerOunce"`
	EURPrice         *float64  `json:"eurPrice,omitempty"`
	EURPricePerOunce *float64  `json:"eurPricePerOunce,omitempty"`
	GBPPrice         *float64  `json:"gbpPrice,omitempty"`
	GBPPricePerOunce *float64  `json:"gbpPricePerOunce,omitempty"`
	Change24h        float64   `json:"change24h"`
	Timestamp        time.Time `json:"timestamp"`
	PreviousPrice    float64   `json:"previousPrice"`
}

// Direction reports whether the price moved up (1), down (-1) or not at all
// relative to PreviousPrice.
func (p Price) Direction() int {
	switch {
	case p.PreviousPrice == 0 || p.Price == p.PreviousPrice:
		return 0
	case p.Price > p.PreviousPrice:
		return 1
	default:
		return -1
	}
}
