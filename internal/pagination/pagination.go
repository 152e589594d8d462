package pagination

import (
	"context"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// Filter is the LIMIT/OFFSET window a Source is asked for.
type Filter struct {
	Limit  int64
	Offset int64
}

func NewFilter(limit, offset int64) Filter {
	return Filter{
		Limit:  limit,
		Offset: offset,
	}
}

// Source is an ordered collection that can be counted and sliced.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, filter Filter) ([]T, error)
}

// SourceFuncs adapts a pair of closures to Source.
type SourceFuncs[T any] struct {
	CountFunc func(ctx context.Context) (int64, error)
	SliceFunc func(ctx context.Context, filter Filter) ([]T, error)
}

func (s SourceFuncs[T]) Count(ctx context.Context) (int64, error) {
	return s.CountFunc(ctx)
}

func (s SourceFuncs[T]) Slice(ctx context.Context, filter Filter) ([]T, error) {
	return s.SliceFunc(ctx, filter)
}

// Page is one bounded slice of a Source plus navigation metadata.
type Page[T any] struct {
	Items    []T
	Number   int64
	NumPages int64
	PerPage  int64
	Total    int64
}

func (p *Page[T]) Len() int {
	return len(p.Items)
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int64 {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int64 {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int64 {
	if p.Total == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

func (p *Page[T]) EndIndex() int64 {
	if p.Number == p.NumPages {
		return p.Total
	}
	return p.Number * p.PerPage
}

func (p *Page[T]) PageRange() []int64 {
	pages := make([]int64, 0, p.NumPages)
	for i := int64(1); i <= p.NumPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// NumPages never reports fewer than one page, so an empty collection still has page 1.
func NumPages(total, perPage int64) int64 {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ParsePageNumber turns a raw query value into a page number clamped to [1, numPages].
func ParsePageNumber(raw string, numPages int64) int64 {
	number, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

// GetPage returns the requested page of source. Invalid or out of range page numbers
// fall back to the nearest valid page instead of failing.
func GetPage[T any](ctx context.Context, source Source[T], rawPage string, perPage int64) (*Page[T], error) {
	if perPage <= 0 {
		return nil, xerrors.Newf("per page must be greater than 0, got %d", perPage)
	}

	total, err := source.Count(ctx)
	if err != nil {
		return nil, xerrors.New(err)
	}

	numPages := NumPages(total, perPage)
	number := ParsePageNumber(rawPage, numPages)

	page := &Page[T]{
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
	}
	if total == 0 {
		page.Items = []T{}
		return page, nil
	}

	items, err := source.Slice(ctx, NewFilter(perPage, (number-1)*perPage))
	if err != nil {
		return nil, xerrors.New(err)
	}
	page.Items = items
	return page, nil
}

// FromSlice paginates an in-memory ordered slice.
func FromSlice[T any](items []T) Source[T] {
	return SourceFuncs[T]{
		CountFunc: func(context.Context) (int64, error) {
			return int64(len(items)), nil
		},
		SliceFunc: func(_ context.Context, filter Filter) ([]T, error) {
			start := min(filter.Offset, int64(len(items)))
			end := min(start+filter.Limit, int64(len(items)))
			return items[start:end], nil
		},
	}
}
