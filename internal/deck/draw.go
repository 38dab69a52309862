package deck

import "math/rand"

// DrawCards picks n distinct cards uniformly at random.
func DrawCards(n int) []Card {
	if n > len(cards) {
		n = len(cards)
	}
	perm := rand.Perm(len(cards))
	out := make([]Card, 0, n)
	for _, i := range perm[:n] {
		out = append(out, cards[i])
	}
	return out
}

// DrawHexagram picks one hexagram uniformly at random.
func DrawHexagram() Hexagram {
	return hexagrams[rand.Intn(len(hexagrams))]
}
