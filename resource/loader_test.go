package resource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/config"
	"github.com/unbirthdayhatter/socialmorpho/game/rotation"
	"github.com/unbirthdayhatter/socialmorpho/game/title"
	"github.com/unbirthdayhatter/socialmorpho/resource"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoPathsKeepsDefaults(t *testing.T) {
	b := resource.Load(config.DataConfig{}, zap.NewNop())
	assert.Equal(t, rotation.DefaultTemplates, b.Templates)
	assert.Equal(t, title.DefaultBaseTiers, b.BaseTiers)
	assert.Equal(t, title.DefaultSecretTiers, b.SecretTiers)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	b := resource.Load(config.DataConfig{
		TemplatesPath: filepath.Join(t.TempDir(), "nope.json"),
	}, zap.NewNop())
	assert.Equal(t, rotation.DefaultTemplates, b.Templates)
}

func TestLoad_TemplatesOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "templates.json", `[
		{"title":"Custom","description":"Receive /pet once.","type":"emote","goal":1,"presets":["Solo"]}
	]`)

	b := resource.Load(config.DataConfig{TemplatesPath: path}, zap.NewNop())
	require.Len(t, b.Templates, 1)
	assert.Equal(t, "Custom", b.Templates[0].Title)
	assert.Equal(t, 1, b.Templates[0].Goal)
}

func TestLoad_MalformedTemplatesKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "templates.json", `{broken`)

	b := resource.Load(config.DataConfig{TemplatesPath: path}, zap.NewNop())
	assert.Equal(t, rotation.DefaultTemplates, b.Templates)
}

func TestLoad_EmptyTemplatesKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "templates.json", `[]`)

	b := resource.Load(config.DataConfig{TemplatesPath: path}, zap.NewNop())
	assert.Equal(t, rotation.DefaultTemplates, b.Templates)
}

func TestLoad_TiersOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tiers.json", `{
		"base":[{"title":"Top","min_completions":5},{"title":"Floor","min_completions":0}],
		"secret":[{"title":"Hidden","event_key":"pet","required":10}]
	}`)

	b := resource.Load(config.DataConfig{TiersPath: path}, zap.NewNop())
	require.Len(t, b.BaseTiers, 2)
	assert.Equal(t, "Top", b.BaseTiers[0].Title)
	require.Len(t, b.SecretTiers, 1)
	assert.Equal(t, "pet", b.SecretTiers[0].EventKey)
}

func TestLoad_PartialTiersFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tiers.json", `{"secret":[{"title":"Hidden","event_key":"pet","required":10}]}`)

	b := resource.Load(config.DataConfig{TiersPath: path}, zap.NewNop())
	// Base list untouched when the file only overrides secrets.
	assert.Equal(t, title.DefaultBaseTiers, b.BaseTiers)
	require.Len(t, b.SecretTiers, 1)
}
