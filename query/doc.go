// Package query provides typed predicates that render to bun WHERE clauses.
package query
