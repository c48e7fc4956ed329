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

package entity

import "fmt"

// Team groups members by back-reference. It does not own the lifecycle of
// its members.
type Team struct {
	ID   int64
	Name string

	members []*Member
}

// NewTeam creates a transient team.
func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// Members returns the loaded members of the team. The returned slice is a
// copy; membership changes go through Member.ChangeTeam.
func (t *Team) Members() []*Member {
	out := make([]*Member, len(t.members))
	copy(out, t.members)
	return out
}

// Contains reports whether m is in the loaded member collection.
func (t *Team) Contains(m *Member) bool {
	return t.indexOf(m) >= 0
}

func (t *Team) add(m *Member) {
	if t.indexOf(m) < 0 {
		t.members = append(t.members, m)
	}
}

func (t *Team) remove(m *Member) {
	if i := t.indexOf(m); i >= 0 {
		t.members = append(t.members[:i], t.members[i+1:]...)
	}
}

func (t *Team) indexOf(m *Member) int {
	for i, member := range t.members {
		if member == m {
			return i
		}
	}
	return -1
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.ID, t.Name)
}
