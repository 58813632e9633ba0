package database

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRecord_JSONDateFormat(t *testing.T) {
	record := DailyRecord{ID: 3, Date: day("2025-03-01"), Digit1: 150, Digit2: 900, CreatedAt: time.Unix(0, 0).UTC()}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2025-03-01"`)
	assert.Contains(t, string(data), `"digit1":150`)

	var decoded DailyRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record.Date, decoded.Date)
	assert.Equal(t, 900, decoded.Digit2)
}

func TestDigitField(t *testing.T) {
	r := DailyRecord{Digit1: 1, Digit2: 2}
	assert.Equal(t, 1, Digit1.Of(r))
	assert.Equal(t, 2, Digit2.Of(r))
	assert.Equal(t, "digit2", Digit2.String())
	assert.Equal(t, "Digit1", Digit1.Label())
}

func TestEmbeddedMigrations_AreOrdered(t *testing.T) {
	src, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)
}
