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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberstore/types"
)

func TestBaseRepositoryCrud(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[teamModel](db, teamMeta)

	a, b := &teamModel{Name: "teamA"}, &teamModel{Name: "teamB"}
	require.NoError(t, repo.Create(ctx, a, b))
	assert.NotZero(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := repo.GetOne(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "teamB", got.Name)

	_, err = repo.GetOne(ctx, 999)
	assert.ErrorIs(t, err, types.ErrNotFound)

	found, err := repo.Query(ctx, "t.name = ?", "teamA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	n, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBaseRepositoryPageIsStableWithoutSort(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository[teamModel](db, teamMeta)
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, &teamModel{Name: name}))
	}

	page, err := repo.Page(ctx, nil, types.MustPageRequest(0, 2))
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "c", page.Content[0].Name)
	assert.Equal(t, "a", page.Content[1].Name)
	assert.True(t, page.HasNext())

	page, err = repo.Page(ctx, nil, types.MustPageRequest(0, 2, types.Asc("name")))
	require.NoError(t, err)
	assert.Equal(t, "a", page.Content[0].Name)
	assert.Equal(t, "b", page.Content[1].Name)
}

func TestBaseRepositoryEmptyPage(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository[teamModel](db, teamMeta)

	page, err := repo.Page(context.Background(), nil, types.MustPageRequest(0, 5))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Zero(t, page.TotalPages())
	assert.True(t, page.IsFirst())
	assert.False(t, page.HasNext())
}

func TestOrderColumns(t *testing.T) {
	repo := &baseRepositoryImpl[memberModel]{meta: memberMeta}

	orders, err := repo.orderColumns(types.Sort{types.Desc("username")})
	require.NoError(t, err)
	assert.Equal(t, []orderColumn{
		{column: "m.username", direction: types.DESC},
		{column: "m.member_id", direction: types.ASC},
	}, orders)

	orders, err = repo.orderColumns(types.Sort{types.Desc("id")})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = repo.orderColumns(types.Sort{types.Asc("team")})
	assert.ErrorIs(t, err, types.ErrInvalidPageRequest)
}
