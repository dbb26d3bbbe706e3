package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many products any listing can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage returns page, or 1 when it is not positive.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// TotalPages returns how many pages of limit hold total rows. An empty result still has one page.
func TotalPages(total, limit int) int {
	limit = NormalizeLimit(limit)
	if total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// Bounds returns the [start, end) slice indexes of page p within total rows.
func Bounds(total int, p Params) (int, int) {
	p = p.Normalize()
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
