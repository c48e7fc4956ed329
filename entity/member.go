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

// Member is a person that optionally belongs to one Team.
//
// The team reference is only reachable through Team and ChangeTeam so that
// both sides of the relationship are always updated together.
type Member struct {
	ID       int64
	Username string
	Age      int

	team   *Team
	teamID int64
}

// NewMember creates a transient member. A non-nil team is attached through
// ChangeTeam.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: username, Age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// RestoreMember rebuilds a persisted member whose team has not been fetched.
// A zero teamID means the member has no team.
func RestoreMember(id int64, username string, age int, teamID int64) *Member {
	return &Member{ID: id, Username: username, Age: age, teamID: teamID}
}

// Team returns the owning team when it has been loaded or assigned.
func (m *Member) Team() *Team {
	return m.team
}

// TeamID returns the identity of the owning team, or 0 when there is none.
func (m *Member) TeamID() int64 {
	if m.team != nil {
		return m.team.ID
	}
	return m.teamID
}

// ChangeTeam moves the member to team, keeping Team.Members consistent on
// both the previous and the new team. A nil team detaches the member.
func (m *Member) ChangeTeam(team *Team) {
	if m.team != nil && m.team != team {
		m.team.remove(m)
	}
	m.team = team
	if team == nil {
		m.teamID = 0
		return
	}
	m.teamID = team.ID
	team.add(m)
}

func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Username, m.Age)
}
