package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charnnections/internal/attr"
	"charnnections/internal/config"
	"charnnections/internal/corpus"
)

func TestRunInitScaffoldsLoadableProject(t *testing.T) {
	t.Chdir(t.TempDir())
	configPath = "charnnections.yaml"

	require.NoError(t, runInit("demo", config.DriverSQLite))

	cfg, err := config.LoadProjectConfig("charnnections.yaml")
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "sqlite://demo.db", cfg.Database.DSN)
	assert.Equal(t, []string{"./corpus/"}, cfg.Corpus)

	standards, err := config.LoadStandards(cfg.Standards)
	require.NoError(t, err)
	assert.Equal(t, 4, standards.Len())

	doc, err := corpus.ParseFile(filepath.Join("corpus", "example.yaml"))
	require.NoError(t, err)
	assert.Len(t, doc.Characters, 1)

	assert.Error(t, runInit("demo", config.DriverSQLite), "existing files are not overwritten")
}

func TestRunInitRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	configPath = "charnnections.yaml"

	assert.Error(t, runInit("demo", "mysql"))
	_, err := os.Stat("charnnections.yaml")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	configPath = "charnnections.yaml"
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0:4000", cfg.Server.Addr)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	configPath = "custom.yaml"
	t.Cleanup(func() { configPath = "charnnections.yaml" })

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"17", "145", "85", "13"})
	require.NoError(t, err)
	assert.Equal(t, []int64{17, 145, 85, 13}, ids)

	_, err = parseIDs([]string{"17", "naruto"})
	assert.Error(t, err)
}

func TestReadCurated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curated.yaml")
	contents := `date: 2024-01-01
groups:
  - trait: affiliation
    traitValue: Leaf
    difficulty: 1
    ids: [1, 2, 3, 4]
  - trait: age
    traitValue: 16
    ids: [5, 6, 7, 8]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	date, inputs, err := readCurated(path, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", date)
	require.Len(t, inputs, 2)
	assert.Equal(t, attr.String("Leaf"), inputs[0].TraitValue)
	assert.Equal(t, attr.Number(16), inputs[1].TraitValue)
	assert.Equal(t, []int64{5, 6, 7, 8}, inputs[1].IDs)

	date, _, err = readCurated(path, "2024-02-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", date)

	_, _, err = readCurated(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
