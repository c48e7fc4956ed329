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
	"strings"

	"github.com/tomoncle/memberstore/types"
	"github.com/uptrace/bun"
)

// DeclaredQuery is a SELECT statement declared by name along with the
// parameters it binds. Parameters are written ":name"; a "::" cast is left
// alone, as is anything inside single or double quotes.
type DeclaredQuery struct {
	Name   string
	Text   string
	Params []string
}

// CompiledQuery is a DeclaredQuery whose text has been checked and rewritten
// to bun placeholders.
type CompiledQuery struct {
	name   string
	sql    string
	params []string
}

func (q *CompiledQuery) Name() string { return q.name }

// SQL returns the statement with one "?" per named parameter occurrence.
func (q *CompiledQuery) SQL() string { return q.sql }

// Bind orders args by placeholder occurrence.
func (q *CompiledQuery) Bind(args map[string]interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(q.params))
	for i, p := range q.params {
		v, ok := args[p]
		if !ok {
			return nil, fmt.Errorf("query %s: missing parameter %q", q.name, p)
		}
		out[i] = v
	}
	return out, nil
}

// Compile checks the query text and parameter list without touching the
// store.
func (d DeclaredQuery) Compile() (*CompiledQuery, error) {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s: %s", types.ErrInvalidQueryDefinition, d.Name, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("%w: query name is empty", types.ErrInvalidQueryDefinition)
	}
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return nil, invalid("query text is empty")
	}
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	sql, used, err := rewriteNamedParams(text)
	if err != nil {
		return nil, invalid("%v", err)
	}
	keyword := strings.ToUpper(strings.Fields(text)[0])
	if keyword != "SELECT" && keyword != "WITH" {
		return nil, invalid("only SELECT statements can be declared, got %s", keyword)
	}

	declared := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if declared[p] {
			return nil, invalid("parameter %q declared twice", p)
		}
		declared[p] = false
	}

	for _, name := range used {
		if _, ok := declared[name]; !ok {
			return nil, invalid("parameter %q is not declared", name)
		}
		declared[name] = true
	}
	for _, p := range d.Params {
		if !declared[p] {
			return nil, invalid("declared parameter %q is not used", p)
		}
	}

	return &CompiledQuery{
		name:   d.Name,
		sql:    sql,
		params: used,
	}, nil
}

var (
	errPositionalParam  = errors.New("positional placeholders are not supported, use :name")
	errMultipleStmt     = errors.New("multiple statements are not supported")
	errUnterminatedText = errors.New("unterminated quoted text")
)

// rewriteNamedParams replaces each ":name" with a bun placeholder and
// returns the names in order of occurrence. A "?" inside quotes is escaped
// so bun keeps it literal.
func rewriteNamedParams(text string) (string, []string, error) {
	var (
		b     strings.Builder
		names []string
		quote byte
	)
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '?' {
				b.WriteByte('\\')
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			return "", nil, errPositionalParam
		case c == ';':
			return "", nil, errMultipleStmt
		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			b.WriteString("::")
			i++
			continue
		case c == ':' && i+1 < len(text) && isParamStart(text[i+1]):
			j := i + 1
			for j < len(text) && isParamPart(text[j]) {
				j++
			}
			names = append(names, text[i+1:j])
			b.WriteByte('?')
			i = j - 1
			continue
		}
		b.WriteByte(c)
	}
	if quote != 0 {
		return "", nil, errUnterminatedText
	}
	return b.String(), names, nil
}

func isParamStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isParamPart(c byte) bool {
	return isParamStart(c) || ('0' <= c && c <= '9')
}

// QueryRegistry holds compiled queries by name.
type QueryRegistry struct {
	queries map[string]*CompiledQuery
}

// Get returns the compiled query registered under name.
func (r *QueryRegistry) Get(name string) (*CompiledQuery, bool) {
	q, ok := r.queries[name]
	return q, ok
}

// MustGet is like Get but panics for an unknown name.
func (r *QueryRegistry) MustGet(name string) *CompiledQuery {
	q, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("query %s is not registered", name))
	}
	return q
}

// CompileQueries compiles every query and prepares it against db inside an
// empty derived table, so that unknown tables, unknown columns and syntax
// errors are reported before the first call. Any failure is an
// ErrInvalidQueryDefinition.
func CompileQueries(ctx context.Context, db bun.IDB, queries ...DeclaredQuery) (*QueryRegistry, error) {
	registry := &QueryRegistry{queries: make(map[string]*CompiledQuery, len(queries))}
	for _, d := range queries {
		if _, ok := registry.queries[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s: declared twice", types.ErrInvalidQueryDefinition, d.Name)
		}
		q, err := d.Compile()
		if err != nil {
			return nil, err
		}
		if err := probe(ctx, db, q); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidQueryDefinition, d.Name, err)
		}
		registry.queries[d.Name] = q
	}
	return registry, nil
}

func probe(ctx context.Context, db bun.IDB, q *CompiledQuery) error {
	args := make([]interface{}, len(q.params))
	rows, err := db.QueryContext(ctx, "SELECT * FROM ("+q.sql+") AS probe WHERE 1 = 0", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return rows.Err()
}
