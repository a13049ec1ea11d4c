// Package pricing computes the publication price for advertisements.
package pricing

// MinimumPrice is the floor price in UAH for any ad publication.
const MinimumPrice = 50

// Price returns the ad publication price for a channel with the given
// audience size. The price scales with the audience but never drops
// below MinimumPrice.
func Price(audienceSize int) int {
	p := audienceSize / 20
	if p < MinimumPrice {
		return MinimumPrice
	}
	return p
}
