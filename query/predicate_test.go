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

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun/schema"
)

const (
	username Field = "username"
	age      Field = "age"
)

func TestComparison(t *testing.T) {
	f := Gt(age, 15).Filter("m")

	assert.Equal(t, "m.age > ?", f.Schema)
	assert.Equal(t, []interface{}{15}, f.Args)

	assert.Equal(t, "age >= ?", Ge(age, 20).Filter("").Schema)
	assert.Equal(t, "age <= ?", Le(age, 20).Filter("").Schema)
	assert.Equal(t, "age < ?", Lt(age, 20).Filter("").Schema)
}

func TestAnd(t *testing.T) {
	f := And(Eq(username, "AAA"), Gt(age, 15)).Filter("m")

	assert.Equal(t, "(m.username = ?) AND (m.age > ?)", f.Schema)
	assert.Equal(t, []interface{}{"AAA", 15}, f.Args)
}

func TestNestedJunction(t *testing.T) {
	f := Or(Eq(username, "AAA"), And(Eq(username, "BBB"), Lt(age, 30))).Filter("")

	assert.Equal(t, "(username = ?) OR ((username = ?) AND (age < ?))", f.Schema)
	assert.Equal(t, []interface{}{"AAA", "BBB", 30}, f.Args)
}

func TestSinglePredicateJunction(t *testing.T) {
	assert.Equal(t, "username = ?", And(Eq(username, "AAA")).Filter("").Schema)
}

func TestEmptyJunction(t *testing.T) {
	assert.Equal(t, "1 = 1", And().Filter("m").Schema)
	assert.Equal(t, "1 = 0", Or().Filter("m").Schema)
	assert.Equal(t, "1 = 1", All().Filter("m").Schema)
}

func TestIn(t *testing.T) {
	names := []string{"AAA", "BBB"}
	f := In(username, names).Filter("m")

	assert.Equal(t, "m.username IN (?)", f.Schema)
	assert.Len(t, f.Args, 1)
	assert.Implements(t, (*schema.QueryAppender)(nil), f.Args[0])
}

func TestInEmptySetMatchesNothing(t *testing.T) {
	f := In(username, []string{}).Filter("m")

	assert.Equal(t, "1 = 0", f.Schema)
	assert.Empty(t, f.Args)
}
