// Package database provides connection management, table migrations with
// foreign keys, YAML and environment configuration, logging, health checks
// and store error classification built on top of Bun.
package database
