package configcache

import "testing"

type pairsFilter struct {
	pairs [][2]string
}

func (f pairsFilter) Fields() map[string]string {
	m := make(map[string]string, len(f.pairs))
	for _, p := range f.pairs {
		m[p[0]] = p[1]
	}
	return m
}

type row struct {
	GuildID string
	Value   string
}

func TestKeyCanonicalization(t *testing.T) {
	a := pairsFilter{pairs: [][2]string{{"guild_id", "1"}, {"type", "mute"}}}
	b := pairsFilter{pairs: [][2]string{{"type", "mute"}, {"guild_id", "1"}}}
	if Key(a) != Key(b) {
		t.Errorf("field ordering changed the key: %q vs %q", Key(a), Key(b))
	}

	c := pairsFilter{pairs: [][2]string{{"guild_id", "2"}, {"type", "mute"}}}
	if Key(a) == Key(c) {
		t.Errorf("different filters collided: %q", Key(a))
	}
}

func TestQueryOneMemoizes(t *testing.T) {
	calls := 0
	cache := New(
		func(f pairsFilter) (*row, error) {
			calls++
			return &row{GuildID: f.Fields()["guild_id"], Value: "v"}, nil
		},
		nil,
	)

	f := pairsFilter{pairs: [][2]string{{"guild_id", "1"}}}
	for range 3 {
		r, err := cache.QueryOne(f)
		if err != nil {
			t.Fatalf("QueryOne: %v", err)
		}
		if r == nil || r.GuildID != "1" {
			t.Fatalf("unexpected row %+v", r)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 backing query, got %d", calls)
	}

	// differently ordered construction of the same filter hits the same entry
	reordered := pairsFilter{pairs: [][2]string{{"guild_id", "1"}}}
	if _, err := cache.QueryOne(reordered); err != nil {
		t.Fatalf("QueryOne: %v", err)
	}
	if calls != 1 {
		t.Errorf("equivalent filter missed the cache, %d backing queries", calls)
	}
}

func TestQueryOneMemoizesMiss(t *testing.T) {
	calls := 0
	cache := New(
		func(pairsFilter) (*row, error) {
			calls++
			return nil, nil
		},
		nil,
	)

	f := pairsFilter{pairs: [][2]string{{"guild_id", "404"}}}
	for range 2 {
		r, err := cache.QueryOne(f)
		if err != nil {
			t.Fatalf("QueryOne: %v", err)
		}
		if r != nil {
			t.Fatalf("expected nil row, got %+v", r)
		}
	}
	if calls != 1 {
		t.Errorf("memoized nil was re-queried, %d backing queries", calls)
	}

	cache.Invalidate(f)
	if _, err := cache.QueryOne(f); err != nil {
		t.Fatalf("QueryOne: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh query after invalidation, got %d", calls)
	}
}

func TestOneAndAllKeySpacesAreDisjoint(t *testing.T) {
	oneCalls, allCalls := 0, 0
	cache := New(
		func(pairsFilter) (*row, error) {
			oneCalls++
			return &row{Value: "single"}, nil
		},
		func(pairsFilter) ([]row, error) {
			allCalls++
			return []row{{Value: "a"}, {Value: "b"}}, nil
		},
	)

	f := pairsFilter{pairs: [][2]string{{"guild_id", "1"}}}
	if _, err := cache.QueryOne(f); err != nil {
		t.Fatalf("QueryOne: %v", err)
	}
	rows, err := cache.QueryAll(f)
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("QueryAll served a single row where a collection was expected: %+v", rows)
	}
	if oneCalls != 1 || allCalls != 1 {
		t.Errorf("expected one backing query each, got one=%d all=%d", oneCalls, allCalls)
	}
}

func TestInvalidateAbsentIsNoop(t *testing.T) {
	cache := New(
		func(pairsFilter) (*row, error) { return nil, nil },
		nil,
	)
	// must not panic or error
	cache.Invalidate(pairsFilter{pairs: [][2]string{{"guild_id", "1"}}})
}
