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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/memberstore/database"
	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db   *bun.DB
	meta EntityMeta
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB, meta EntityMeta) Repository[T] {
	if meta.PK == "" {
		meta.PK = "id"
	}
	return &baseRepositoryImpl[T]{db: db, meta: meta}
}

func (r *baseRepositoryImpl[T]) Meta() EntityMeta { return r.meta }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) op(name string) string { return r.meta.Name + "." + name }

func (r *baseRepositoryImpl[T]) selectQuery(dest interface{}, filter *types.QueryFilter, opts []QueryOption) *bun.SelectQuery {
	query := applyOptions(r.db.NewSelect().Model(dest), opts)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any, opts ...QueryOption) (*T, error) {
	entity := new(T)
	err := applyOptions(r.db.NewSelect().Model(entity), opts).
		Where("? = ?", bun.Ident(r.meta.Column(r.meta.PK)), id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %v", types.ErrNotFound, r.meta.Name, id)
	}
	if err != nil {
		return nil, database.WrapStoreError(r.op("get"), err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	return r.List(ctx, nil, opts...)
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter, opts ...QueryOption) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.selectQuery(&entities, filter, opts).
		OrderExpr("? ASC", bun.Ident(r.meta.Column(r.meta.PK))).
		Scan(ctx)
	if err != nil {
		return nil, database.WrapStoreError(r.op("list"), err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return r.List(ctx, types.NewQueryFilter(query, args...))
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	total, err := r.selectQuery((*T)(nil), filter, nil).Count(ctx)
	if err != nil {
		return 0, database.WrapStoreError(r.op("count"), err)
	}
	return total, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return database.WrapStoreError(r.op("create"), err)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return database.WrapStoreError(r.op("update"), err)
}

// Delete removes the row with the given primary key and reports how many
// rows were deleted.
func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*T)(nil)).
		Where("? = ?", bun.Ident(r.meta.PK), id).
		Exec(ctx)
	if err != nil {
		return 0, database.WrapStoreError(r.op("delete"), err)
	}
	n, err := res.RowsAffected()
	return n, database.WrapStoreError(r.op("delete"), err)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) (*types.Page[*T], error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	orders, err := r.orderColumns(page.GetSort())
	if err != nil {
		return nil, err
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 || page.GetOffset() >= total {
		return types.NewPage[*T](nil, page, total), nil
	}

	entities, err := r.window(ctx, filter, page.GetOffset(), page.GetPageSize(), orders, opts)
	if err != nil {
		return nil, err
	}
	return types.NewPage(entities, page, total), nil
}

func (r *baseRepositoryImpl[T]) Slice(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) (*types.Slice[*T], error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	orders, err := r.orderColumns(page.GetSort())
	if err != nil {
		return nil, err
	}

	entities, err := r.window(ctx, filter, page.GetOffset(), page.GetPageSize()+1, orders, opts)
	if err != nil {
		return nil, err
	}
	hasNext := len(entities) > page.GetPageSize()
	if hasNext {
		entities = entities[:page.GetPageSize()]
	}
	return types.NewSlice(entities, page, hasNext), nil
}

func (r *baseRepositoryImpl[T]) Window(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest, opts ...QueryOption) ([]*T, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	orders, err := r.orderColumns(page.GetSort())
	if err != nil {
		return nil, err
	}
	return r.window(ctx, filter, page.GetOffset(), page.GetPageSize(), orders, opts)
}

type orderColumn struct {
	column    string
	direction types.Direction
}

// orderColumns resolves sort properties through the sortable column map and
// appends the primary key so that windows are stable.
func (r *baseRepositoryImpl[T]) orderColumns(sort types.Sort) ([]orderColumn, error) {
	orders := make([]orderColumn, 0, len(sort)+1)
	pkSorted := false
	for _, o := range sort {
		column, ok := r.meta.SortColumns[o.Property]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort property %q for %s", types.ErrInvalidPageRequest, o.Property, r.meta.Name)
		}
		pkSorted = pkSorted || column == r.meta.PK
		orders = append(orders, orderColumn{column: r.meta.Column(column), direction: o.Direction})
	}
	if !pkSorted {
		orders = append(orders, orderColumn{column: r.meta.Column(r.meta.PK), direction: types.ASC})
	}
	return orders, nil
}

func (r *baseRepositoryImpl[T]) window(ctx context.Context, filter *types.QueryFilter, offset, limit int, orders []orderColumn, opts []QueryOption) ([]*T, error) {
	entities := make([]*T, 0, limit)
	query := r.selectQuery(&entities, filter, opts)
	for _, o := range orders {
		query = query.OrderExpr("? "+o.direction.Name(), bun.Ident(o.column))
	}
	err := query.Offset(offset).Limit(limit).Scan(ctx)
	if err != nil {
		return nil, database.WrapStoreError(r.op("window"), err)
	}
	return entities, nil
}
