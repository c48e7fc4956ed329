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
	"errors"
	"fmt"

	"github.com/tomoncle/memberstore/database"
	"github.com/tomoncle/memberstore/entity"
	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
)

// TeamRepository persists teams. Passing WithMembers loads the members of
// each team and links both sides.
type TeamRepository interface {
	Save(ctx context.Context, team *entity.Team) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (types.Optional[*entity.Team], error)
	FindAll(ctx context.Context, opts ...QueryOption) ([]*entity.Team, error)
	Count(ctx context.Context) (int, error)
	// Delete removes the team and detaches its members, which are kept.
	Delete(ctx context.Context, team *entity.Team) error
	DeleteByID(ctx context.Context, id int64) error
}

type teamRepositoryImpl struct {
	db      *bun.DB
	base    Repository[teamModel]
	session *Session
}

// NewTeamRepository returns a TeamRepository. A nil session gets a fresh
// one.
func NewTeamRepository(db *bun.DB, session *Session) TeamRepository {
	if session == nil {
		session = NewSession()
	}
	return &teamRepositoryImpl{
		db:      db,
		base:    NewRepository[teamModel](db, teamMeta),
		session: session,
	}
}

func (r *teamRepositoryImpl) Save(ctx context.Context, team *entity.Team) error {
	model := newTeamModel(team)
	if team.ID == 0 {
		if err := r.base.Create(ctx, model); err != nil {
			return err
		}
		team.ID = model.ID
	} else if err := r.base.Update(ctx, model); err != nil {
		return err
	}
	r.session.putTeam(team)
	return nil
}

func (r *teamRepositoryImpl) FindByID(ctx context.Context, id int64, opts ...QueryOption) (types.Optional[*entity.Team], error) {
	model, err := r.base.GetOne(ctx, id, opts...)
	if errors.Is(err, types.ErrNotFound) {
		return types.Empty[*entity.Team](), nil
	}
	if err != nil {
		return types.Empty[*entity.Team](), err
	}
	return types.Of(r.session.team(model)), nil
}

func (r *teamRepositoryImpl) FindAll(ctx context.Context, opts ...QueryOption) ([]*entity.Team, error) {
	models, err := r.base.GetAll(ctx, opts...)
	if err != nil {
		return nil, err
	}
	teams := make([]*entity.Team, len(models))
	for i, model := range models {
		teams[i] = r.session.team(model)
	}
	return teams, nil
}

func (r *teamRepositoryImpl) Count(ctx context.Context) (int, error) {
	return r.base.Count(ctx, nil)
}

func (r *teamRepositoryImpl) Delete(ctx context.Context, team *entity.Team) error {
	if team.ID == 0 {
		return fmt.Errorf("%w: %s has no identity", types.ErrTransientEntity, team)
	}
	if err := r.DeleteByID(ctx, team.ID); err != nil {
		return err
	}
	for _, m := range team.Members() {
		m.ChangeTeam(nil)
	}
	return nil
}

func (r *teamRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*memberModel)(nil)).
			Set("? = NULL", bun.Ident(string(MemberTeamID))).
			Where("? = ?", bun.Ident(string(MemberTeamID)), id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*teamModel)(nil)).
			Where("? = ?", bun.Ident(string(TeamID)), id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return database.WrapStoreError("team.delete", err)
	}
	r.session.detachTeam(id)
	r.session.EvictTeams(id)
	return nil
}
