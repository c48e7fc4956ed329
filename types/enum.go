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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Direction is the sort direction of an Order.
type Direction int

const (
	ASC Direction = iota
	DESC
)

var _ BaseEnum = ASC

var directionNames = map[Direction]string{
	ASC:  "ASC",
	DESC: "DESC",
}

var directionDescs = map[Direction]string{
	ASC:  "ascending",
	DESC: "descending",
}

// ParseDirection parses "asc"/"desc" case-insensitively. Unknown input
// yields an invalid Direction.
func ParseDirection(s string) Direction {
	for d, name := range directionNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return d
		}
	}
	return Direction(IllegalValue)
}

func (d Direction) IsValid() bool {
	_, ok := directionNames[d]
	return ok
}

func (d Direction) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d Direction) String() string {
	return d.Name()
}

func (d Direction) Desc() string {
	if desc, ok := directionDescs[d]; ok {
		return desc
	}
	return IllegalDesc
}

func (d Direction) Name() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return IllegalName
}
