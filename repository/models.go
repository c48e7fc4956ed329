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
	"github.com/tomoncle/memberstore/database"
	"github.com/tomoncle/memberstore/entity"
	"github.com/tomoncle/memberstore/query"
	"github.com/uptrace/bun"
)

// Columns usable in member and team predicates.
const (
	MemberID       query.Field = "member_id"
	MemberUsername query.Field = "username"
	MemberAge      query.Field = "age"
	MemberTeamID   query.Field = "team_id"

	TeamID   query.Field = "team_id"
	TeamName query.Field = "name"
)

var memberMeta = EntityMeta{
	Name:  "member",
	Alias: "m",
	PK:    string(MemberID),
	SortColumns: map[string]string{
		"id":       string(MemberID),
		"username": string(MemberUsername),
		"age":      string(MemberAge),
	},
}

var teamMeta = EntityMeta{
	Name:  "team",
	Alias: "t",
	PK:    string(TeamID),
	SortColumns: map[string]string{
		"id":   string(TeamID),
		"name": string(TeamName),
	},
}

type memberModel struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64      `bun:"member_id,pk,autoincrement"`
	Username string     `bun:"username,notnull"`
	Age      int        `bun:"age,notnull"`
	TeamID   int64      `bun:"team_id,nullzero"`
	Team     *teamModel `bun:"rel:belongs-to,join:team_id=team_id"`
}

type teamModel struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID      int64          `bun:"team_id,pk,autoincrement"`
	Name    string         `bun:"name,notnull"`
	Members []*memberModel `bun:"rel:has-many,join:team_id=team_id"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*teamModel)(nil), 1))
	database.RegisteredModel(database.NewModelAdapter((*memberModel)(nil), 2, database.ForeignKeyConstraint{
		Column:          string(MemberTeamID),
		ReferenceTable:  "team",
		ReferenceColumn: string(TeamID),
		OnDelete:        "SET NULL",
	}))
}

func newMemberModel(m *entity.Member) *memberModel {
	return &memberModel{
		ID:       m.ID,
		Username: m.Username,
		Age:      m.Age,
		TeamID:   m.TeamID(),
	}
}

func newTeamModel(t *entity.Team) *teamModel {
	return &teamModel{ID: t.ID, Name: t.Name}
}
