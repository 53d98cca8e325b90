package model

// MarketPoint is one day of the demo price series.
type MarketPoint struct {
	Date      string  `json:"date"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}
