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
	"fmt"
	"strings"
)

var validForeignKeyActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// Clause renders the constraint body accepted by bun's
// CreateTableQuery.ForeignKey, e.g. "(team_id) REFERENCES team (team_id)".
func (fk *ForeignKeyConstraint) Clause() string {
	clause := fmt.Sprintf("(%s) REFERENCES %s (%s)", fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		clause += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return clause
}

// ForeignKeyManager collects the constraints declared by registered models.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager over the constraints declared in
// models. Constraints without a table inherit the name of their model's
// table as resolved by tableName.
func NewForeignKeyManager(logger Logger, models []SQLModel, tableName func(model interface{}) string) *ForeignKeyManager {
	var constraints []ForeignKeyConstraint
	for _, model := range models {
		for _, fk := range model.ForeignKeys() {
			if fk.Table == "" && tableName != nil {
				fk.Table = tableName(model.Instance())
			}
			constraints = append(constraints, fk)
		}
	}
	return &ForeignKeyManager{
		constraints: constraints,
		logger:      logger,
	}
}

// GetConstraintsByTable returns the constraints defined for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error

	for _, constraint := range fkm.constraints {
		if constraint.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if constraint.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", constraint.Table))
		}
		if constraint.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", constraint.Table, constraint.Column))
		}
		if constraint.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", constraint.Table, constraint.Column, constraint.ReferenceTable))
		}
		for _, action := range []struct{ kind, value string }{{"delete", constraint.OnDelete}, {"update", constraint.OnUpdate}} {
			if action.value != "" && !isValidForeignKeyAction(action.value) {
				errs = append(errs, fmt.Errorf("invalid %s policy: %s, constraint: %s", action.kind, action.value, constraint.GenerateConstraintName()))
			}
		}
	}

	if fkm.logger != nil {
		for _, err := range errs {
			fkm.logger.Debug("Foreign key constraint validation failed", "error", err.Error())
		}
	}
	return errs
}

func isValidForeignKeyAction(action string) bool {
	for _, valid := range validForeignKeyActions {
		if strings.EqualFold(action, valid) {
			return true
		}
	}
	return false
}
