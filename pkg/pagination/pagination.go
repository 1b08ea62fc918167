package pagination

const (
	// DefaultPage is used when the page is missing or not positive.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies defaults and caps.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Offset returns the number of rows to skip for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizePage enforces a positive page number.
func NormalizePage(page int) int {
	if page <= 0 {
		return DefaultPage
	}
	return page
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

// Result is the list envelope returned by every paginated endpoint.
type Result[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	LastPage int   `json:"lastPage"`
}

// NewResult builds a Result, computing lastPage from total. An empty set
// still reports lastPage 1.
func NewResult[T any](data []T, total int64, params Params) Result[T] {
	n := params.Normalize()
	if data == nil {
		data = []T{}
	}
	last := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	if last < 1 {
		last = 1
	}
	return Result[T]{
		Data:     data,
		Total:    total,
		Page:     n.Page,
		Limit:    n.Limit,
		LastPage: last,
	}
}

// Map converts the rows of a Result while keeping the paging fields.
func Map[T, U any](in Result[T], fn func(T) U) Result[U] {
	out := make([]U, 0, len(in.Data))
	for _, item := range in.Data {
		out = append(out, fn(item))
	}
	return Result[U]{
		Data:     out,
		Total:    in.Total,
		Page:     in.Page,
		Limit:    in.Limit,
		LastPage: in.LastPage,
	}
}
