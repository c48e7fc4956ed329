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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
connection_config:
  type: postgres
  driver: pgx
  host: db.internal
  port: 5432
  username: app
  dbname: members
  slow_query_time: 500ms
data_migrate_config:
  enable_migrate_on_startup: false
  enable_foreign_key: true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "database.yaml", sampleConfig))
	require.NoError(t, err)

	cc := cfg.ConnectionConfig
	assert.Equal(t, "postgres", cc.Type)
	assert.Equal(t, "pgx", cc.Driver)
	assert.Equal(t, "db.internal", cc.Host)
	assert.Equal(t, 5432, cc.Port)
	assert.Equal(t, 500*time.Millisecond, cc.SlowQueryTime)
	assert.Equal(t, 100, cc.MaxOpenConns)
	assert.False(t, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	envFile := writeFile(t, ".env", "DB_PASSWORD=secret\nDB_PORT=6543\n")
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_PORT", "")
	require.NoError(t, os.Unsetenv("DB_PASSWORD"))
	require.NoError(t, os.Unsetenv("DB_PORT"))

	cfg, err := LoadConfig(writeFile(t, "database.yaml", sampleConfig), envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	cc := cfg.ConnectionConfig
	assert.Equal(t, "override.internal", cc.Host)
	assert.Equal(t, "secret", cc.Password)
	assert.Equal(t, 6543, cc.Port)
	assert.Equal(t, 90*time.Second, cc.ConnMaxLifetime)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "bad.yaml", "connection_config:\n  type: oracle\n  dbname: x\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "connection_config:\n  type: postgres\n  driver: odbc\n  dbname: x\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "connection_config:\n  type: sqlite\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "members.db", sqliteDSN("members"))
	assert.Equal(t, "file:x?mode=memory", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "postgres", postgresDriverName(""))
	assert.Equal(t, "postgres", postgresDriverName("pq"))
	assert.Equal(t, "pgx", postgresDriverName("pgx"))
}
