package pagination

import "testing"

func TestNormalize(t *testing.T) {
	got := Params{Page: 0, Limit: 500}.Normalize()
	if got.Page != 1 || got.Limit != MaxLimit {
		t.Fatalf("unexpected normalize result %+v", got)
	}
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatalf("expected default limit")
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 5, 5},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d,%d)=%d want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestBounds(t *testing.T) {
	start, end := Bounds(30, Params{Page: 3, Limit: 12})
	if start != 24 || end != 30 {
		t.Fatalf("expected [24,30), got [%d,%d)", start, end)
	}
	start, end = Bounds(5, Params{Page: 4, Limit: 12})
	if start != 5 || end != 5 {
		t.Fatalf("page past the end should be empty, got [%d,%d)", start, end)
	}
}
