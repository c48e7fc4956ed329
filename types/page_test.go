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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequestRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		page int
		size int
		sort []Order
	}{
		{name: "zero size", page: 0, size: 0},
		{name: "negative size", page: 0, size: -3},
		{name: "negative page", page: -1, size: 10},
		{name: "empty property", page: 0, size: 10, sort: []Order{{Property: " ", Direction: ASC}}},
		{name: "bad direction", page: 0, size: 10, sort: []Order{{Property: "username", Direction: Direction(9)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPageRequest(tt.page, tt.size, tt.sort...)
			assert.True(t, errors.Is(err, ErrInvalidPageRequest), "got %v", err)
		})
	}
}

func TestZeroValuePageRequestFailsValidation(t *testing.T) {
	var req PageRequest
	assert.ErrorIs(t, req.Validate(), ErrInvalidPageRequest)

	var missing *PageRequest
	assert.ErrorIs(t, missing.Validate(), ErrInvalidPageRequest)
}

func TestPageRequestOffset(t *testing.T) {
	req := MustPageRequest(2, 3, Desc("username"))

	assert.Equal(t, 6, req.GetOffset())
	assert.Equal(t, Sort{Desc("username")}, req.GetSort())
	assert.Equal(t, 9, req.Next().GetOffset())
}

func TestPageMetadata(t *testing.T) {
	first := NewPage([]string{"member5", "member4", "member3"}, MustPageRequest(0, 3), 5)

	assert.Equal(t, 5, first.TotalElements)
	assert.Equal(t, 2, first.TotalPages())
	assert.Equal(t, 3, first.NumberOfElements())
	assert.True(t, first.IsFirst())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	second := NewPage([]string{"member2", "member1"}, MustPageRequest(1, 3), 5)
	assert.False(t, second.IsFirst())
	assert.False(t, second.HasNext())
	assert.True(t, second.IsLast())

	beyond := NewPage[string](nil, MustPageRequest(7, 3), 5)
	assert.NotNil(t, beyond.Content)
	assert.False(t, beyond.HasContent())
	assert.False(t, beyond.HasNext())
	assert.Equal(t, 2, beyond.TotalPages())
}

func TestPageOfEmptyResult(t *testing.T) {
	page := NewPage[int](nil, MustPageRequest(0, 10), 0)

	assert.Equal(t, 0, page.TotalPages())
	assert.True(t, page.IsFirst())
	assert.False(t, page.HasNext())
}

func TestMapPageKeepsMetadata(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, MustPageRequest(0, 3, Asc("id")), 7)

	mapped := MapPage(page, func(i int) string { return string(rune('a' + i - 1)) })

	assert.Equal(t, []string{"a", "b", "c"}, mapped.Content)
	assert.Equal(t, page.TotalElements, mapped.TotalElements)
	assert.Equal(t, page.TotalPages(), mapped.TotalPages())
	assert.Equal(t, page.Number, mapped.Number)
	assert.Equal(t, page.HasNext(), mapped.HasNext())
	assert.Equal(t, page.Sort, mapped.Sort)
}

func TestSlice(t *testing.T) {
	slice := NewSlice([]int{1, 2, 3}, MustPageRequest(0, 3), true)
	require.True(t, slice.HasNext())
	assert.True(t, slice.IsFirst())

	mapped := MapSlice(slice, func(i int) int { return i * 10 })
	assert.Equal(t, []int{10, 20, 30}, mapped.Content)
	assert.True(t, mapped.HasNext())
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "UNSORTED", Unsorted().String())
	assert.Equal(t, "username: DESC,age: DESC", SortBy(DESC, "username", "age").String())
}

func TestDirection(t *testing.T) {
	assert.Equal(t, DESC, ParseDirection("desc"))
	assert.Equal(t, ASC, ParseDirection(" ASC "))
	assert.False(t, ParseDirection("sideways").IsValid())
	assert.Equal(t, IllegalName, Direction(5).Name())
	assert.Equal(t, IllegalValue, Direction(5).Number())
	assert.Equal(t, "descending", DESC.Desc())
	assert.Equal(t, 1, DESC.Number())
}

func TestOptional(t *testing.T) {
	present := Of("AAA")
	v, ok := present.Get()
	assert.True(t, ok)
	assert.Equal(t, "AAA", v)

	absent := Empty[string]()
	assert.False(t, absent.IsPresent())
	assert.Equal(t, "none", absent.OrElse("none"))
	_, err := absent.OrError()
	assert.ErrorIs(t, err, ErrNotFound)
}
