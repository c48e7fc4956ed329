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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), true, NoRowsErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, DuplicateKeyErr},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, true, ForeignKeyViolationErr},
		{"pq missing table", &pq.Error{Code: "42P01"}, true, NoTableErr},
		{"pq unknown code", &pq.Error{Code: "XX000"}, true, UnknownErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: member.username"), true, DuplicateKeyErr},
		{"sqlite table", errors.New("SQL logic error: no such table: member (1)"), true, NoTableErr},
		{"other", errors.New("connection refused"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestWrapStoreError(t *testing.T) {
	assert.NoError(t, WrapStoreError("member.get", nil))

	cause := &pgconn.PgError{Code: "23505"}
	err := WrapStoreError("member.create", cause)

	var se *StoreError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "member.create", se.Op)
	assert.Equal(t, DuplicateKeyErr, se.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key")

	again := WrapStoreError("member.save", fmt.Errorf("save: %w", err))
	assert.True(t, errors.As(again, &se))
	assert.Equal(t, "member.create", se.Op)
	assert.True(t, IsStoreError(again))
	assert.False(t, IsStoreError(cause))
}
