package deck

import "testing"

func TestDrawCardsDistinct(t *testing.T) {
	for i := 0; i < 50; i++ {
		cards := DrawCards(3)
		if len(cards) != 3 {
			t.Fatalf("drew %d cards, want 3", len(cards))
		}
		seen := map[string]bool{}
		for _, c := range cards {
			if seen[c.ID] {
				t.Fatalf("duplicate card %s in draw %v", c.ID, cards)
			}
			seen[c.ID] = true
		}
	}
}

func TestCardByID(t *testing.T) {
	c, ok := CardByID("fool")
	if !ok || c.Name != "Шут" {
		t.Fatalf("CardByID(fool) = %+v, %v", c, ok)
	}
	if _, ok := CardByID("ace_of_spades"); ok {
		t.Fatal("unknown id must not resolve")
	}
}

func TestDeckIsMajorArcana(t *testing.T) {
	cards := Cards()
	if len(cards) != 22 {
		t.Fatalf("deck has %d cards, want 22", len(cards))
	}
	ids := map[string]bool{}
	for _, c := range cards {
		if c.ID == "" || c.Name == "" || c.Meaning == "" {
			t.Fatalf("incomplete card %+v", c)
		}
		if ids[c.ID] {
			t.Fatalf("duplicate id %s", c.ID)
		}
		ids[c.ID] = true
	}
}

func TestHexagramByID(t *testing.T) {
	h := DrawHexagram()
	got, ok := HexagramByID(h.ID())
	if !ok || got.Number != h.Number {
		t.Fatalf("round trip failed for %s", h.ID())
	}
	for _, bad := range []string{"", "hex_", "hex_0", "hex_65", "fool"} {
		if _, ok := HexagramByID(bad); ok {
			t.Fatalf("id %q must not resolve", bad)
		}
	}
}

func TestHexagramsComplete(t *testing.T) {
	hs := Hexagrams()
	if len(hs) != 64 {
		t.Fatalf("have %d hexagrams, want 64", len(hs))
	}
	for i, h := range hs {
		if h.Number != i+1 {
			t.Fatalf("hexagram %d numbered %d", i+1, h.Number)
		}
		if h.Name == "" || h.Meaning == "" {
			t.Fatalf("incomplete hexagram %d", h.Number)
		}
	}
}
