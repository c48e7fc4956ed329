/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strings"
)

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// Order is a single sort key: an entity property and a direction.
type Order struct {
	Property  string
	Direction Direction
}

// Asc orders by property ascending.
func Asc(property string) Order { return Order{Property: property, Direction: ASC} }

// Desc orders by property descending.
func Desc(property string) Order { return Order{Property: property, Direction: DESC} }

// Sort is an ordered list of sort keys.
type Sort []Order

// SortBy builds a Sort applying direction to every property.
func SortBy(direction Direction, properties ...string) Sort {
	sort := make(Sort, 0, len(properties))
	for _, p := range properties {
		sort = append(sort, Order{Property: p, Direction: direction})
	}
	return sort
}

// Unsorted is the empty Sort.
func Unsorted() Sort { return Sort{} }

func (s Sort) IsSorted() bool { return len(s) > 0 }

func (s Sort) String() string {
	if !s.IsSorted() {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.Property + ": " + o.Direction.Name()
	}
	return strings.Join(parts, ",")
}

// PageRequest describes a 0-based page window and its ordering.
type PageRequest struct {
	page int
	size int
	sort Sort
}

// NewPageRequest validates and constructs a PageRequest. A non-positive
// size, a negative page or an invalid sort direction fails with
// ErrInvalidPageRequest.
func NewPageRequest(page int, size int, sort ...Order) (*PageRequest, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidPageRequest, size)
	}
	if page < 0 {
		return nil, fmt.Errorf("%w: page index must not be negative, got %d", ErrInvalidPageRequest, page)
	}
	for _, o := range sort {
		if strings.TrimSpace(o.Property) == "" {
			return nil, fmt.Errorf("%w: empty sort property", ErrInvalidPageRequest)
		}
		if !o.Direction.IsValid() {
			return nil, fmt.Errorf("%w: invalid direction for %s", ErrInvalidPageRequest, o.Property)
		}
	}
	return &PageRequest{page: page, size: size, sort: append(Sort{}, sort...)}, nil
}

// MustPageRequest is like NewPageRequest but panics on invalid input.
func MustPageRequest(page int, size int, sort ...Order) *PageRequest {
	p, err := NewPageRequest(page, size, sort...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *PageRequest) GetPage() int { return p.page }

func (p *PageRequest) GetPageSize() int { return p.size }

func (p *PageRequest) GetOffset() int { return p.page * p.size }

func (p *PageRequest) GetSort() Sort { return p.sort }

// Next returns the request for the following page.
func (p *PageRequest) Next() *PageRequest {
	return &PageRequest{page: p.page + 1, size: p.size, sort: p.sort}
}

// Validate re-checks a request that may have been built as a zero value.
func (p *PageRequest) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: missing page request", ErrInvalidPageRequest)
	}
	_, err := NewPageRequest(p.page, p.size, p.sort...)
	return err
}

// Page is a window of content plus total count and navigation metadata.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int
	Sort          Sort
}

// NewPage constructs a Page for the given request and total count.
func NewPage[T any](content []T, request *PageRequest, total int) *Page[T] {
	if content == nil {
		content = make([]T, 0)
	}
	return &Page[T]{
		Content:       content,
		Number:        request.GetPage(),
		Size:          request.GetPageSize(),
		TotalElements: total,
		Sort:          request.GetSort(),
	}
}

// TotalPages is ceil(TotalElements / Size).
func (p *Page[T]) TotalPages() int {
	if p.Size < 1 {
		return 0
	}
	return (p.TotalElements + p.Size - 1) / p.Size
}

func (p *Page[T]) NumberOfElements() int { return len(p.Content) }

func (p *Page[T]) IsFirst() bool { return p.Number == 0 }

func (p *Page[T]) IsLast() bool { return !p.HasNext() }

func (p *Page[T]) HasNext() bool { return p.Number+1 < p.TotalPages() }

func (p *Page[T]) HasPrevious() bool { return p.Number > 0 }

func (p *Page[T]) HasContent() bool { return len(p.Content) > 0 }

// MapPage converts the content of p with fn and keeps all page metadata.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	content := make([]R, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return &Page[R]{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		Sort:          p.Sort,
	}
}

// Slice is a window of content that only knows whether a next window exists.
type Slice[T any] struct {
	Content []T
	Number  int
	Size    int
	Sort    Sort
	hasNext bool
}

// NewSlice constructs a Slice for the given request.
func NewSlice[T any](content []T, request *PageRequest, hasNext bool) *Slice[T] {
	if content == nil {
		content = make([]T, 0)
	}
	return &Slice[T]{
		Content: content,
		Number:  request.GetPage(),
		Size:    request.GetPageSize(),
		Sort:    request.GetSort(),
		hasNext: hasNext,
	}
}

func (s *Slice[T]) HasNext() bool { return s.hasNext }

func (s *Slice[T]) IsFirst() bool { return s.Number == 0 }

func (s *Slice[T]) NumberOfElements() int { return len(s.Content) }

// MapSlice converts the content of s with fn and keeps the slice metadata.
func MapSlice[T, R any](s *Slice[T], fn func(T) R) *Slice[R] {
	content := make([]R, len(s.Content))
	for i, item := range s.Content {
		content[i] = fn(item)
	}
	return &Slice[R]{Content: content, Number: s.Number, Size: s.Size, Sort: s.Sort, hasNext: s.hasNext}
}
