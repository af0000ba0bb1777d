package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir はテスト中だけ作業ディレクトリを切り替えます（.env の読み込み対策）
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{
		"SPRINTLY_URL", "SPRINTLY_EMAIL", "SPRINTLY_API_KEY", "SPRINTLY_PRODUCT_ID",
		"SPRINTLY_OFFSETS", "SPRINTLY_PAGE_LIMIT", "SPRINTLY_TAGS", "OUTPUT_PREFIX",
		"MAPPING_FILE", "DUMP_DIR", "MENTION_POLICY", "RAGGED_ROWS", "SKIP_INVALID_ITEMS",
	} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://sprint.ly", cfg.SprintlyURL)
	assert.Equal(t, []int{0, 100, 200, 300}, cfg.Offsets)
	assert.Equal(t, 100, cfg.PageLimit)
	assert.Equal(t, "pivotal", cfg.Tags)
	assert.Equal(t, "tracker_import", cfg.OutputPrefix)
	assert.Equal(t, MentionKeep, cfg.MentionPolicy)
	assert.False(t, cfg.RaggedRows)
	assert.False(t, cfg.SkipInvalidItems)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPRINTLY_URL", "http://localhost:8080/")
	t.Setenv("SPRINTLY_EMAIL", "joe@devshop.com")
	t.Setenv("SPRINTLY_API_KEY", "secret")
	t.Setenv("SPRINTLY_PRODUCT_ID", "21740")
	t.Setenv("SPRINTLY_OFFSETS", "0, 50")
	t.Setenv("SPRINTLY_PAGE_LIMIT", "50")
	t.Setenv("MENTION_POLICY", "FAIL")
	t.Setenv("RAGGED_ROWS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.SprintlyURL)
	assert.Equal(t, []int{0, 50}, cfg.Offsets)
	assert.Equal(t, 50, cfg.PageLimit)
	assert.Equal(t, MentionFail, cfg.MentionPolicy)
	assert.True(t, cfg.RaggedRows)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SPRINTLY_PRODUCT_ID", "")
	os.Unsetenv("SPRINTLY_PRODUCT_ID")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPRINTLY_PRODUCT_ID=999\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "999", cfg.ProductID)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SPRINTLY_OFFSETS", "0,abc")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SPRINTLY_OFFSETS", "0")
	t.Setenv("MENTION_POLICY", "blank")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestParseOffsets(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "default set", input: "0,100,200,300", want: []int{0, 100, 200, 300}},
		{name: "spaces and trailing comma", input: " 0 , 100 ,", want: []int{0, 100}},
		{name: "negative", input: "-100", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOffsets(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	require.NoError(t, m.Validate())
	assert.Len(t, m.Types, 4)
	assert.Len(t, m.Statuses, 5)
	assert.Equal(t, UnknownEstimate, m.Estimates["~"])
	assert.Equal(t, 8, m.Estimates["XL"])
	assert.Equal(t, "@janedev", m.Mentions["Jane Developer"])
}

func TestLoadMappingOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.toml")
	content := `
[types]
chore = "chore"

[estimates]
XXL = 13

[mentions]
"Ann Tester" = "@ann"
"Joe Developer" = "@joe"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, "chore", m.Types["chore"])
	assert.Equal(t, "bug", m.Types["defect"])
	assert.Equal(t, 13, m.Estimates["XXL"])
	assert.Equal(t, "@ann", m.Mentions["Ann Tester"])
	assert.Equal(t, "@joe", m.Mentions["Joe Developer"])
	assert.Equal(t, "@janedev", m.Mentions["Jane Developer"])
}

func TestLoadMappingErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMapping(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[estimates]\nS = 0\n"), 0o600))
	_, err = LoadMapping(bad)
	assert.ErrorContains(t, err, "estimates.S")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[types\n"), 0o600))
	_, err = LoadMapping(broken)
	assert.Error(t, err)
}

func TestLoadMappingEmptyPath(t *testing.T) {
	m, err := LoadMapping("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMapping(), m)
}
