// Package repository maps members and teams onto Bun models. It provides a
// generic repository with pagination, declared queries validated against
// the store on creation, a session identity map and the member and team
// repositories built on them.
package repository
