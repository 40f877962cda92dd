package assistant

import "testing"

func names(cs []candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestRankCandidates(t *testing.T) {
	stock := []candidate{
		{ID: "g1", Name: "Sticker Pack"},
		{ID: "g2", Name: "Sticker"},
		{ID: "g3", Name: "Free Sticker Pack"},
		{ID: "g4", Name: "Tote Bag"},
	}

	t.Run("exact beats prefix beats substring", func(t *testing.T) {
		got := names(rankCandidates("Sticker", stock))
		want := []string{"Sticker", "Sticker Pack", "Free Sticker Pack"}
		assertOrder(t, got, want)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got := names(rankCandidates("sticker", stock))
		want := []string{"Sticker", "Sticker Pack", "Free Sticker Pack"}
		assertOrder(t, got, want)
	})

	t.Run("ties keep original order", func(t *testing.T) {
		tied := []candidate{
			{ID: "a", Name: "Pin Set Alpha"},
			{ID: "b", Name: "Pin Set Beta"},
			{ID: "c", Name: "Pin Set Gamma"},
		}
		got := names(rankCandidates("pin set", tied))
		want := []string{"Pin Set Alpha", "Pin Set Beta", "Pin Set Gamma"}
		assertOrder(t, got, want)
	})

	t.Run("unrelated names excluded", func(t *testing.T) {
		got := rankCandidates("sticker", stock)
		for _, c := range got {
			if c.Name == "Tote Bag" {
				t.Error("unrelated candidate was included")
			}
		}
	})

	t.Run("result count capped", func(t *testing.T) {
		var many []candidate
		for i := 0; i < 20; i++ {
			many = append(many, candidate{ID: "x", Name: "Poster Variant"})
		}
		got := rankCandidates("poster", many)
		if len(got) > maxResolverMatches {
			t.Fatalf("got %d matches, cap is %d", len(got), maxResolverMatches)
		}
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		if got := rankCandidates("  ", stock); len(got) != 0 {
			t.Fatalf("got %d matches for blank query", len(got))
		}
	})
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
