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

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestNewLoggerIsRegisteredOnce(t *testing.T) {
	a := NewLogger("REGISTRY")
	b := NewLogger("REGISTRY")

	assert.Same(t, a, b)
	assert.True(t, SetLoggerLevel("REGISTRY", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("MISSING", "error"))
}

func TestJSONLogFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow query",
		Data:    logrus.Fields{"rows": 3, "error": errors.New("boom")},
	}

	out, err := (&JSONLogFormatter{LoggerName: "DATABASE"}).Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "DATABASE", rec["model"])
	assert.Equal(t, "2025-01-02 03:04:05.000", rec["time"])
	fields := rec["fields"].(map[string]interface{})
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, float64(3), fields["rows"])
}

func TestLog4jColorFormatterIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&Log4jColorFormatter{LoggerName: "TEST", NameWidth: 10})

	l.WithField("b", 2).WithField("a", 1).Info("hello")

	assert.Contains(t, buf.String(), "hello a=1 b=2")
	assert.Contains(t, buf.String(), "TEST")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("MEMBERSTORE_TEST_BOOL", "true")
	t.Setenv("MEMBERSTORE_TEST_DURATION", "7")
	t.Setenv("MEMBERSTORE_TEST_BAD", "x")

	assert.True(t, EnvDefaultBool("MEMBERSTORE_TEST_BOOL", false))
	assert.False(t, EnvDefaultBool("MEMBERSTORE_TEST_BAD", false))
	assert.Equal(t, 7*time.Second, EnvDefaultDuration("MEMBERSTORE_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, EnvDefaultDuration("MEMBERSTORE_TEST_BAD", time.Second))
	assert.Equal(t, "fallback", EnvDefaultString("MEMBERSTORE_TEST_UNSET", "fallback"))
}
