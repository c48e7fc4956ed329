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

package repository

import (
	"context"

	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any, opts ...QueryOption) (*T, error)

	GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter, opts ...QueryOption) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) (int64, error)
}

// PageQueryRepository defines windowed listing of entities. Every method
// rejects an invalid page request with types.ErrInvalidPageRequest.
type PageQueryRepository[T any] interface {
	// Page runs a count query and a window query.
	Page(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) (*types.Page[*T], error)

	// Slice fetches one extra row to tell whether a next window exists and
	// never counts.
	Slice(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) (*types.Slice[*T], error)

	// Window returns the rows of the requested window without metadata.
	Window(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) ([]*T, error)
}

// Repository combines CRUD and pagination and exposes Bun query builders for
// advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	Meta() EntityMeta
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

// EntityMeta names the table alias, primary key column and sortable
// properties of a model.
type EntityMeta struct {
	Name        string
	Alias       string
	PK          string
	SortColumns map[string]string
}

// Column qualifies column with the table alias.
func (m EntityMeta) Column(column string) string {
	if m.Alias == "" {
		return column
	}
	return m.Alias + "." + column
}

// QueryOption adjusts a select query, typically to fetch relations.
type QueryOption func(*queryOptions)

type queryOptions struct {
	relations []string
}

// WithRelation joins or preloads the named bun relation.
func WithRelation(name string) QueryOption {
	return func(o *queryOptions) {
		for _, rel := range o.relations {
			if rel == name {
				return
			}
		}
		o.relations = append(o.relations, name)
	}
}

// WithTeam fetches the owning team together with members.
func WithTeam() QueryOption { return WithRelation("Team") }

// WithMembers fetches the members together with teams.
func WithMembers() QueryOption { return WithRelation("Members") }

func applyOptions(q *bun.SelectQuery, opts []QueryOption) *bun.SelectQuery {
	o := &queryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	for _, rel := range o.relations {
		q = q.Relation(rel)
	}
	return q
}
