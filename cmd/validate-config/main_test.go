package main

import (
	"testing"

	"github.com/dietledger/backend/config"
	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "(not set)", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "DEMO****", mask("DEMO_KEY_123"))
}

func TestSummarize(t *testing.T) {
	cfg := &config.Config{
		Storage:  config.StorageConfig{Type: "postgres"},
		Database: config.DatabaseConfig{Host: "db", Password: "hunter22"},
		USDA:     config.USDAConfig{APIKey: "abcd1234"},
	}

	rows := map[string]string{}
	for _, r := range summarize(cfg) {
		rows[r[0]] = r[1]
	}
	assert.Equal(t, "db", rows["database.host"])
	assert.Equal(t, "hunt****", rows["database.password"])
	assert.Equal(t, "abcd****", rows["usda.api_key"])

	cfg.Storage.Type = "memory"
	for _, r := range summarize(cfg) {
		assert.NotContains(t, r[0], "database.", "database settings are only shown for postgres")
	}
}
