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
	"github.com/tomoncle/memberstore/query"
	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
)

const (
	QueryMemberFindByUsername = "Member.findByUsername"
	QueryMemberFindUser       = "Member.findUser"
)

// MemberQueries are the declared member queries compiled when a
// MemberRepository is created.
var MemberQueries = []DeclaredQuery{
	{
		Name:   QueryMemberFindByUsername,
		Text:   "SELECT m.member_id, m.username, m.age, m.team_id FROM member AS m WHERE m.username = :username ORDER BY m.member_id",
		Params: []string{"username"},
	},
	{
		Name:   QueryMemberFindUser,
		Text:   "SELECT m.member_id, m.username, m.age, m.team_id FROM member AS m WHERE m.username = :username AND m.age = :age ORDER BY m.member_id",
		Params: []string{"username", "age"},
	},
}

// MemberRepository is the query façade over members. Returned members are
// session instances; passing WithTeam fetches their team in the same query.
type MemberRepository interface {
	Save(ctx context.Context, member *entity.Member) error
	FindByID(ctx context.Context, id int64, opts ...QueryOption) (types.Optional[*entity.Member], error)
	FindAll(ctx context.Context, opts ...QueryOption) ([]*entity.Member, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, member *entity.Member) error
	DeleteByID(ctx context.Context, id int64) error

	// FindByUsernameAndAgeGreaterThan matches username exactly and age
	// strictly above age.
	FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error)
	// FindByUsername runs the declared Member.findByUsername query.
	FindByUsername(ctx context.Context, username string) ([]*entity.Member, error)
	// FindUser runs the declared Member.findUser query.
	FindUser(ctx context.Context, username string, age int) ([]*entity.Member, error)
	FindUsernameList(ctx context.Context) ([]string, error)
	FindMemberDto(ctx context.Context) ([]entity.MemberDto, error)
	FindByNames(ctx context.Context, names []string) ([]*entity.Member, error)

	FindListByUsername(ctx context.Context, username string) ([]*entity.Member, error)
	// FindMemberByUsername returns nil when nothing matches and
	// types.ErrNonUniqueResult when more than one member matches.
	FindMemberByUsername(ctx context.Context, username string) (*entity.Member, error)
	// FindOptionalByUsername never fails on several matches; it holds the
	// member with the lowest id.
	FindOptionalByUsername(ctx context.Context, username string) (types.Optional[*entity.Member], error)

	FindByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) (*types.Page[*entity.Member], error)
	FindSliceByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) (*types.Slice[*entity.Member], error)
	FindListByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) ([]*entity.Member, error)

	FindBy(ctx context.Context, predicate query.Predicate, opts ...QueryOption) ([]*entity.Member, error)
	PageBy(ctx context.Context, predicate query.Predicate, page *types.PageRequest, opts ...QueryOption) (*types.Page[*entity.Member], error)

	// BulkAgePlus increments the age of every member aged age or more and
	// evicts those members from the session.
	BulkAgePlus(ctx context.Context, age int) (int, error)
}

type memberRepositoryImpl struct {
	db      *bun.DB
	base    Repository[memberModel]
	session *Session
	queries *QueryRegistry
	logger  database.Logger
}

// NewMemberRepository compiles the declared member queries against db and
// fails with types.ErrInvalidQueryDefinition when one of them is malformed.
// A nil session gets a fresh one.
func NewMemberRepository(ctx context.Context, db *bun.DB, session *Session) (MemberRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	queries, err := CompileQueries(ctx, db, MemberQueries...)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = NewSession()
	}
	return &memberRepositoryImpl{
		db:      db,
		base:    NewRepository[memberModel](db, memberMeta),
		session: session,
		queries: queries,
		logger:  database.GetLogger(),
	}, nil
}

func (r *memberRepositoryImpl) filter(p query.Predicate) *types.QueryFilter {
	return p.Filter(memberMeta.Alias)
}

func (r *memberRepositoryImpl) Save(ctx context.Context, member *entity.Member) error {
	if t := member.Team(); t != nil && t.ID == 0 {
		return fmt.Errorf("%w: %s references %s", types.ErrTransientEntity, member, t)
	}
	model := newMemberModel(member)
	if member.ID == 0 {
		if err := r.base.Create(ctx, model); err != nil {
			return err
		}
		member.ID = model.ID
	} else if err := r.base.Update(ctx, model); err != nil {
		return err
	}
	r.session.putMember(member)
	if t := member.Team(); t != nil {
		r.session.putTeam(t)
	}
	return nil
}

func (r *memberRepositoryImpl) FindByID(ctx context.Context, id int64, opts ...QueryOption) (types.Optional[*entity.Member], error) {
	model, err := r.base.GetOne(ctx, id, opts...)
	if errors.Is(err, types.ErrNotFound) {
		return types.Empty[*entity.Member](), nil
	}
	if err != nil {
		return types.Empty[*entity.Member](), err
	}
	return types.Of(r.session.member(model, nil)), nil
}

func (r *memberRepositoryImpl) FindAll(ctx context.Context, opts ...QueryOption) ([]*entity.Member, error) {
	models, err := r.base.GetAll(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return r.session.memberList(models), nil
}

func (r *memberRepositoryImpl) Count(ctx context.Context) (int, error) {
	return r.base.Count(ctx, nil)
}

func (r *memberRepositoryImpl) Delete(ctx context.Context, member *entity.Member) error {
	if member.ID == 0 {
		return fmt.Errorf("%w: %s has no identity", types.ErrTransientEntity, member)
	}
	if err := r.DeleteByID(ctx, member.ID); err != nil {
		return err
	}
	member.ChangeTeam(nil)
	return nil
}

func (r *memberRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.base.Delete(ctx, id); err != nil {
		return err
	}
	r.session.EvictMembers(id)
	return nil
}

func (r *memberRepositoryImpl) FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	return r.FindBy(ctx, query.And(query.Eq(MemberUsername, username), query.Gt(MemberAge, age)))
}

func (r *memberRepositoryImpl) FindByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	return r.runDeclared(ctx, QueryMemberFindByUsername, map[string]interface{}{"username": username})
}

func (r *memberRepositoryImpl) FindUser(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	return r.runDeclared(ctx, QueryMemberFindUser, map[string]interface{}{"username": username, "age": age})
}

func (r *memberRepositoryImpl) runDeclared(ctx context.Context, name string, params map[string]interface{}) ([]*entity.Member, error) {
	q := r.queries.MustGet(name)
	args, err := q.Bind(params)
	if err != nil {
		return nil, err
	}
	models := make([]*memberModel, 0)
	if err := r.db.NewRaw(q.SQL(), args...).Scan(ctx, &models); err != nil {
		return nil, database.WrapStoreError(name, err)
	}
	return r.session.memberList(models), nil
}

func (r *memberRepositoryImpl) FindUsernameList(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := r.db.NewSelect().
		Model((*memberModel)(nil)).
		Column(string(MemberUsername)).
		OrderExpr("? ASC", bun.Ident(memberMeta.Column(string(MemberID)))).
		Scan(ctx, &names)
	if err != nil {
		return nil, database.WrapStoreError("member.usernames", err)
	}
	return names, nil
}

// FindMemberDto inner joins members with their team; members without a
// team are not listed.
func (r *memberRepositoryImpl) FindMemberDto(ctx context.Context) ([]entity.MemberDto, error) {
	dtos := make([]entity.MemberDto, 0)
	err := r.db.NewSelect().
		Model((*memberModel)(nil)).
		ColumnExpr("? AS ?", bun.Ident(memberMeta.Column(string(MemberID))), bun.Ident("id")).
		ColumnExpr("? AS ?", bun.Ident(memberMeta.Column(string(MemberUsername))), bun.Ident("username")).
		ColumnExpr("? AS ?", bun.Ident(teamMeta.Column(string(TeamName))), bun.Ident("team_name")).
		Join("JOIN ? AS ? ON ? = ?",
			bun.Ident(teamMeta.Name), bun.Ident(teamMeta.Alias),
			bun.Ident(teamMeta.Column(string(TeamID))), bun.Ident(memberMeta.Column(string(MemberTeamID)))).
		OrderExpr("? ASC", bun.Ident(memberMeta.Column(string(MemberID)))).
		Scan(ctx, &dtos)
	if err != nil {
		return nil, database.WrapStoreError("member.dto", err)
	}
	return dtos, nil
}

func (r *memberRepositoryImpl) FindByNames(ctx context.Context, names []string) ([]*entity.Member, error) {
	return r.FindBy(ctx, query.In(MemberUsername, names))
}

func (r *memberRepositoryImpl) FindListByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	return r.FindBy(ctx, query.Eq(MemberUsername, username))
}

func (r *memberRepositoryImpl) FindMemberByUsername(ctx context.Context, username string) (*entity.Member, error) {
	models := make([]*memberModel, 0, 2)
	err := r.db.NewSelect().
		Model(&models).
		Where("? = ?", bun.Ident(memberMeta.Column(string(MemberUsername))), username).
		OrderExpr("? ASC", bun.Ident(memberMeta.Column(string(MemberID)))).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, database.WrapStoreError("member.single", err)
	}
	switch len(models) {
	case 0:
		return nil, nil
	case 1:
		return r.session.member(models[0], nil), nil
	default:
		return nil, fmt.Errorf("%w: more than one member named %q", types.ErrNonUniqueResult, username)
	}
}

func (r *memberRepositoryImpl) FindOptionalByUsername(ctx context.Context, username string) (types.Optional[*entity.Member], error) {
	page := types.MustPageRequest(0, 1, types.Asc("id"))
	models, err := r.base.Window(ctx, r.filter(query.Eq(MemberUsername, username)), page)
	if err != nil {
		return types.Empty[*entity.Member](), err
	}
	if len(models) == 0 {
		return types.Empty[*entity.Member](), nil
	}
	return types.Of(r.session.member(models[0], nil)), nil
}

func (r *memberRepositoryImpl) FindByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) (*types.Page[*entity.Member], error) {
	return r.PageBy(ctx, query.Eq(MemberAge, age), page, opts...)
}

func (r *memberRepositoryImpl) FindSliceByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) (*types.Slice[*entity.Member], error) {
	s, err := r.base.Slice(ctx, r.filter(query.Eq(MemberAge, age)), page, opts...)
	if err != nil {
		return nil, err
	}
	return types.MapSlice(s, r.hydrate), nil
}

func (r *memberRepositoryImpl) FindListByAge(ctx context.Context, age int, page *types.PageRequest, opts ...QueryOption) ([]*entity.Member, error) {
	models, err := r.base.Window(ctx, r.filter(query.Eq(MemberAge, age)), page, opts...)
	if err != nil {
		return nil, err
	}
	return r.session.memberList(models), nil
}

func (r *memberRepositoryImpl) FindBy(ctx context.Context, predicate query.Predicate, opts ...QueryOption) ([]*entity.Member, error) {
	models, err := r.base.List(ctx, r.filter(predicate), opts...)
	if err != nil {
		return nil, err
	}
	return r.session.memberList(models), nil
}

func (r *memberRepositoryImpl) PageBy(ctx context.Context, predicate query.Predicate, page *types.PageRequest, opts ...QueryOption) (*types.Page[*entity.Member], error) {
	p, err := r.base.Page(ctx, r.filter(predicate), page, opts...)
	if err != nil {
		return nil, err
	}
	return types.MapPage(p, r.hydrate), nil
}

func (r *memberRepositoryImpl) hydrate(model *memberModel) *entity.Member {
	return r.session.member(model, nil)
}

func (r *memberRepositoryImpl) BulkAgePlus(ctx context.Context, age int) (int, error) {
	var (
		ids      []int64
		affected int64
	)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model((*memberModel)(nil)).
			Column(string(MemberID)).
			Where("? >= ?", bun.Ident(string(MemberAge)), age).
			Scan(ctx, &ids); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*memberModel)(nil)).
			Set("? = ? + 1", bun.Ident(string(MemberAge)), bun.Ident(string(MemberAge))).
			Where("? >= ?", bun.Ident(string(MemberAge)), age).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, database.WrapStoreError("member.bulkAgePlus", err)
	}

	r.session.EvictMembers(ids...)
	r.logger.Debug("Bulk age update", "threshold", age, "affected", affected, "evicted", len(ids))
	return int(affected), nil
}
