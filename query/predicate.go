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

package query

import (
	"strings"

	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
)

// Field is a column of the queried table.
type Field string

// Column returns the column name, qualified with alias when it is not empty.
func (f Field) Column(alias string) string {
	if alias == "" {
		return string(f)
	}
	return alias + "." + string(f)
}

type Operator int

const (
	OpEq Operator = iota
	OpGt
	OpGe
	OpLt
	OpLe
	OpIn
)

var operatorSQL = map[Operator]string{
	OpEq: "=",
	OpGt: ">",
	OpGe: ">=",
	OpLt: "<",
	OpLe: "<=",
	OpIn: "IN",
}

func (o Operator) String() string { return operatorSQL[o] }

// Predicate is a typed WHERE condition.
type Predicate interface {
	// Filter renders the predicate as a bun WHERE schema with arguments,
	// qualifying columns with alias when it is not empty.
	Filter(alias string) *types.QueryFilter
}

type comparison struct {
	field Field
	op    Operator
	value interface{}
}

func (c comparison) Filter(alias string) *types.QueryFilter {
	return types.NewQueryFilter(c.field.Column(alias)+" "+c.op.String()+" ?", c.value)
}

// Eq matches rows whose field equals value.
func Eq(field Field, value interface{}) Predicate { return comparison{field, OpEq, value} }

// Gt matches rows whose field is strictly greater than value.
func Gt(field Field, value interface{}) Predicate { return comparison{field, OpGt, value} }

// Ge matches rows whose field is greater than or equal to value.
func Ge(field Field, value interface{}) Predicate { return comparison{field, OpGe, value} }

// Lt matches rows whose field is strictly less than value.
func Lt(field Field, value interface{}) Predicate { return comparison{field, OpLt, value} }

// Le matches rows whose field is less than or equal to value.
func Le(field Field, value interface{}) Predicate { return comparison{field, OpLe, value} }

type membership[T any] struct {
	field  Field
	values []T
}

func (m membership[T]) Filter(alias string) *types.QueryFilter {
	if len(m.values) == 0 {
		return types.NewQueryFilter("1 = 0")
	}
	return types.NewQueryFilter(m.field.Column(alias)+" IN (?)", bun.In(m.values))
}

// In matches rows whose field equals any of values. An empty set matches
// nothing.
func In[T any](field Field, values []T) Predicate {
	return membership[T]{field: field, values: values}
}

type junction struct {
	sep   string
	parts []Predicate
}

func (j junction) Filter(alias string) *types.QueryFilter {
	if len(j.parts) == 1 {
		return j.parts[0].Filter(alias)
	}
	schemas := make([]string, 0, len(j.parts))
	var args []interface{}
	for _, p := range j.parts {
		f := p.Filter(alias)
		schemas = append(schemas, "("+f.Schema+")")
		args = append(args, f.Args...)
	}
	return types.NewQueryFilter(strings.Join(schemas, j.sep), args...)
}

// And matches rows satisfying every predicate. With no predicates it
// matches every row.
func And(predicates ...Predicate) Predicate {
	if len(predicates) == 0 {
		return all{}
	}
	return junction{sep: " AND ", parts: predicates}
}

// Or matches rows satisfying at least one predicate. With no predicates it
// matches nothing.
func Or(predicates ...Predicate) Predicate {
	if len(predicates) == 0 {
		return none{}
	}
	return junction{sep: " OR ", parts: predicates}
}

type all struct{}

func (all) Filter(string) *types.QueryFilter { return types.NewQueryFilter("1 = 1") }

type none struct{}

func (none) Filter(string) *types.QueryFilter { return types.NewQueryFilter("1 = 0") }

// All matches every row.
func All() Predicate { return all{} }
