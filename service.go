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

package memberstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tomoncle/memberstore/database"
	"github.com/tomoncle/memberstore/repository"
	"github.com/uptrace/bun"
)

// Service groups the member and team repositories over one session.
type Service interface {
	// Members returns the member query façade.
	Members() repository.MemberRepository

	// Teams returns the team repository.
	Teams() repository.TeamRepository

	// Session returns the identity map shared by both repositories.
	Session() *repository.Session

	// Health pings the database backing the service.
	Health(ctx context.Context) *database.HealthStatus
}

type serviceImpl struct {
	db      *bun.DB
	session *repository.Session
	members repository.MemberRepository
	teams   repository.TeamRepository
}

// NewService returns a Service backed by the global database connection
// set up with database.InitDB. Declared queries are validated here, so a
// malformed one fails the call with types.ErrInvalidQueryDefinition.
func NewService(ctx context.Context) (Service, error) {
	db := database.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return NewServiceWithDB(ctx, db)
}

// NewServiceWithDB is like NewService with an explicit database.
func NewServiceWithDB(ctx context.Context, db *bun.DB) (Service, error) {
	session := repository.NewSession()
	members, err := repository.NewMemberRepository(ctx, db, session)
	if err != nil {
		return nil, err
	}
	return &serviceImpl{
		db:      db,
		session: session,
		members: members,
		teams:   repository.NewTeamRepository(db, session),
	}, nil
}

func (s *serviceImpl) Members() repository.MemberRepository { return s.members }

func (s *serviceImpl) Teams() repository.TeamRepository { return s.teams }

func (s *serviceImpl) Session() *repository.Session { return s.session }

func (s *serviceImpl) Health(ctx context.Context) *database.HealthStatus {
	start := time.Now()
	status := &database.HealthStatus{LastCheckTime: start}
	if err := s.db.PingContext(ctx); err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}
	status.ResponseTime = time.Since(start)
	stats := s.db.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}
