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
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/memberstore/database"
	"github.com/tomoncle/memberstore/entity"
	"github.com/uptrace/bun"
)

var testDBSeq atomic.Int64

// newTestDB opens a private in-memory sqlite database with the member and
// team tables created.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	cfg.ConnectionConfig.MaxOpenConns = 1
	cfg.ConnectionConfig.MaxIdleConns = 1

	manager := database.NewDatabaseManager(&cfg.ConnectionConfig, cfg.DataMigrateConfig)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager.GetDB()
}

type fixture struct {
	db      *bun.DB
	session *Session
	members MemberRepository
	teams   TeamRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	session := NewSession()
	members, err := NewMemberRepository(context.Background(), db, session)
	require.NoError(t, err)
	return &fixture{
		db:      db,
		session: session,
		members: members,
		teams:   NewTeamRepository(db, session),
	}
}

func (f *fixture) team(t *testing.T, name string) *entity.Team {
	t.Helper()
	team := entity.NewTeam(name)
	require.NoError(t, f.teams.Save(context.Background(), team))
	return team
}

func (f *fixture) member(t *testing.T, username string, age int, team *entity.Team) *entity.Member {
	t.Helper()
	m := entity.NewMember(username, age, team)
	require.NoError(t, f.members.Save(context.Background(), m))
	return m
}

func usernames(members []*entity.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Username
	}
	return out
}
