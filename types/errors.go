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

import "errors"

var (
	// ErrInvalidQueryDefinition is returned at start-up for a declared query
	// whose text or parameters are malformed.
	ErrInvalidQueryDefinition = errors.New("invalid query definition")

	// ErrNonUniqueResult is returned by strict single-result queries that
	// match more than one row.
	ErrNonUniqueResult = errors.New("query did not return a unique result")

	// ErrInvalidPageRequest is returned for a non-positive page size, a
	// negative page index or an unknown sort property.
	ErrInvalidPageRequest = errors.New("invalid page request")

	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("entity not found")

	// ErrTransientEntity is returned when an entity references another
	// entity that has not been saved yet.
	ErrTransientEntity = errors.New("entity references an unsaved entity")
)
