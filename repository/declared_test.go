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

func TestDeclaredQueryCompile(t *testing.T) {
	q, err := DeclaredQuery{
		Name:   "Member.findUser",
		Text:   "SELECT * FROM member WHERE username = :username AND age = :age AND username <> :username",
		Params: []string{"age", "username"},
	}.Compile()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM member WHERE username = ? AND age = ? AND username <> ?", q.SQL())
	args, err := q.Bind(map[string]interface{}{"username": "AAA", "age": 10})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"AAA", 10, "AAA"}, args)

	_, err = q.Bind(map[string]interface{}{"username": "AAA"})
	assert.Error(t, err)
}

func TestDeclaredQueryKeepsCasts(t *testing.T) {
	q, err := DeclaredQuery{
		Name:   "Member.cast",
		Text:   "SELECT age::text FROM member WHERE username = :username",
		Params: []string{"username"},
	}.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT age::text FROM member WHERE username = ?", q.SQL())
}

func TestDeclaredQueryIgnoresQuotedText(t *testing.T) {
	q, err := DeclaredQuery{
		Name:   "Member.quoted",
		Text:   `SELECT 'who? :nobody; ' AS "odd:name", username FROM member WHERE username = :username`,
		Params: []string{"username"},
	}.Compile()
	require.NoError(t, err)
	assert.Equal(t, `SELECT 'who\? :nobody; ' AS "odd:name", username FROM member WHERE username = ?`, q.SQL())

	args, err := q.Bind(map[string]interface{}{"username": "AAA"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"AAA"}, args)
}

func TestDeclaredQueryQuotedTextAgainstStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "AAA", 10, nil)

	registry, err := CompileQueries(ctx, f.db, DeclaredQuery{
		Name:   "Member.greeting",
		Text:   "SELECT 'why?' AS greeting FROM member WHERE username = :username",
		Params: []string{"username"},
	})
	require.NoError(t, err)

	q := registry.MustGet("Member.greeting")
	args, err := q.Bind(map[string]interface{}{"username": "AAA"})
	require.NoError(t, err)
	var greetings []string
	require.NoError(t, f.db.NewRaw(q.SQL(), args...).Scan(ctx, &greetings))
	assert.Equal(t, []string{"why?"}, greetings)
}

func TestDeclaredQueryCompileRejects(t *testing.T) {
	tests := []struct {
		name  string
		query DeclaredQuery
	}{
		{"empty name", DeclaredQuery{Text: "SELECT 1"}},
		{"empty text", DeclaredQuery{Name: "q"}},
		{"positional placeholder", DeclaredQuery{Name: "q", Text: "SELECT * FROM member WHERE age = ?"}},
		{"not a select", DeclaredQuery{Name: "q", Text: "DELETE FROM member"}},
		{"several statements", DeclaredQuery{Name: "q", Text: "SELECT 1; SELECT 2"}},
		{"unterminated literal", DeclaredQuery{Name: "q", Text: "SELECT 'open FROM member"}},
		{"undeclared parameter", DeclaredQuery{Name: "q", Text: "SELECT * FROM member WHERE age = :age"}},
		{"unused parameter", DeclaredQuery{Name: "q", Text: "SELECT * FROM member", Params: []string{"age"}}},
		{"duplicate parameter", DeclaredQuery{Name: "q", Text: "SELECT * FROM member WHERE age = :age", Params: []string{"age", "age"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Compile()
			assert.ErrorIs(t, err, types.ErrInvalidQueryDefinition)
		})
	}
}

func TestCompileQueriesProbesStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	registry, err := CompileQueries(ctx, db, MemberQueries...)
	require.NoError(t, err)
	_, ok := registry.Get(QueryMemberFindUser)
	assert.True(t, ok)

	tests := []DeclaredQuery{
		{Name: "Member.unknownColumn", Text: "SELECT m.nickname FROM member AS m WHERE m.username = :username", Params: []string{"username"}},
		{Name: "Member.unknownTable", Text: "SELECT * FROM members WHERE username = :username", Params: []string{"username"}},
		{Name: "Member.syntax", Text: "SELECT * FROM member WHERE username = :username AND", Params: []string{"username"}},
	}
	for _, q := range tests {
		t.Run(q.Name, func(t *testing.T) {
			_, err := CompileQueries(ctx, db, q)
			assert.ErrorIs(t, err, types.ErrInvalidQueryDefinition)
		})
	}

	_, err = CompileQueries(ctx, db, MemberQueries[0], MemberQueries[0])
	assert.ErrorIs(t, err, types.ErrInvalidQueryDefinition)
}
