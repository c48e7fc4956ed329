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
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tomoncle/memberstore/entity"
)

// Session is an identity map of the members and teams loaded through the
// repositories sharing it. Loading a row whose identity is already in the
// session yields the cached instance, so mutations that bypass entities
// must evict the identities they touch.
type Session struct {
	members *xsync.MapOf[int64, *entity.Member]
	teams   *xsync.MapOf[int64, *entity.Team]
}

func NewSession() *Session {
	return &Session{
		members: xsync.NewMapOf[int64, *entity.Member](),
		teams:   xsync.NewMapOf[int64, *entity.Team](),
	}
}

// Member returns the cached member with the given id.
func (s *Session) Member(id int64) (*entity.Member, bool) {
	return s.members.Load(id)
}

// Team returns the cached team with the given id.
func (s *Session) Team(id int64) (*entity.Team, bool) {
	return s.teams.Load(id)
}

// ContainsMember reports whether the member identity is cached.
func (s *Session) ContainsMember(id int64) bool {
	_, ok := s.members.Load(id)
	return ok
}

// ContainsTeam reports whether the team identity is cached.
func (s *Session) ContainsTeam(id int64) bool {
	_, ok := s.teams.Load(id)
	return ok
}

// EvictMembers drops the given member identities. An evicted member also
// leaves the cached team it belonged to, so the team is refilled from the
// store on its next fetch.
func (s *Session) EvictMembers(ids ...int64) {
	for _, id := range ids {
		if m, ok := s.members.LoadAndDelete(id); ok {
			m.ChangeTeam(nil)
		}
	}
}

// EvictTeams drops the given team identities.
func (s *Session) EvictTeams(ids ...int64) {
	for _, id := range ids {
		s.teams.Delete(id)
	}
}

// Clear drops every cached identity.
func (s *Session) Clear() {
	s.members.Clear()
	s.teams.Clear()
}

// Size returns the number of cached members and teams.
func (s *Session) Size() (members int, teams int) {
	return s.members.Size(), s.teams.Size()
}

func (s *Session) putMember(m *entity.Member) {
	if m.ID != 0 {
		s.members.Store(m.ID, m)
	}
}

func (s *Session) putTeam(t *entity.Team) {
	if t.ID != 0 {
		s.teams.Store(t.ID, t)
	}
}

// member hydrates a row. A fetched team row, or the team given by the
// caller, is linked through ChangeTeam.
func (s *Session) member(model *memberModel, team *entity.Team) *entity.Member {
	if team == nil && model.Team != nil && model.Team.ID != 0 {
		team = s.team(model.Team)
	}
	m, _ := s.members.LoadOrCompute(model.ID, func() *entity.Member {
		return entity.RestoreMember(model.ID, model.Username, model.Age, model.TeamID)
	})
	if team != nil && m.Team() != team {
		m.ChangeTeam(team)
	}
	return m
}

func (s *Session) memberList(models []*memberModel) []*entity.Member {
	out := make([]*entity.Member, len(models))
	for i, model := range models {
		out[i] = s.member(model, nil)
	}
	return out
}

// team hydrates a row and the member rows fetched with it.
func (s *Session) team(model *teamModel) *entity.Team {
	t, _ := s.teams.LoadOrCompute(model.ID, func() *entity.Team {
		return &entity.Team{ID: model.ID, Name: model.Name}
	})
	for _, mm := range model.Members {
		s.member(mm, t)
	}
	return t
}

// detachTeam clears the team reference of every cached member of teamID.
func (s *Session) detachTeam(teamID int64) {
	s.members.Range(func(_ int64, m *entity.Member) bool {
		if m.TeamID() == teamID {
			m.ChangeTeam(nil)
		}
		return true
	})
}
