// Package types provides page requests, pages and slices, sort orders,
// optional values, query filters and the sentinel errors shared by the
// repository layer.
package types
