package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsyn/configs"
	"github.com/Aman-CERP/docsyn/internal/config"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	configCmd, _, err := cmd.Find([]string{"config"})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"], "should have init command")
	assert.True(t, names["show"], "should have show command")
	assert.True(t, names["path"], "should have path command")
}

func TestConfigInit_Project(t *testing.T) {
	project := isolate(t)
	path := filepath.Join(project, config.ProjectConfigFile)

	out, err := execute(t, "--config-dir", project, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created configuration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	// The template itself must load.
	cfg, err := config.Load(project)
	require.NoError(t, err)
	assert.Equal(t, "nicknames", cfg.Synonyms.Dictionary.Name)
}

func TestConfigInit_KeepsExistingUnlessForced(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: universities\n")
	path := filepath.Join(project, config.ProjectConfigFile)

	out, err := execute(t, "--config-dir", project, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, _ := os.ReadFile(path)
	assert.Contains(t, string(data), "universities")

	out, err = execute(t, "--config-dir", project, "config", "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup:")

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(old), "universities")

	data, _ = os.ReadFile(path)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))
}

func TestConfigInit_User(t *testing.T) {
	project := isolate(t)

	_, err := execute(t, "--config-dir", project, "config", "init", "--user")
	require.NoError(t, err)

	assert.True(t, config.UserConfigExists())
	assert.NoFileExists(t, filepath.Join(project, config.ProjectConfigFile))
}

func TestConfigShow_JSON(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: nicknames\n  fields: [firstName]\n  stem: true\n")

	out, err := execute(t, "--config-dir", project, "config", "show", "--json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "nicknames", cfg.Synonyms.Dictionary.Name)
	assert.Equal(t, []string{"firstName"}, cfg.Synonyms.Fields)
	assert.True(t, cfg.Synonyms.Stem)
}

func TestConfigShow_YAMLAndInvalidConfig(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Project: "+project)
	assert.Contains(t, out, "algorithm: snowball")

	writeProjectConfig(t, project, "server:\n  log_level: loud\n")
	_, err = execute(t, "--config-dir", project, "config", "show")
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, config.GetUserConfigPath())
	assert.Contains(t, out, filepath.Join(project, config.ProjectConfigFile))
}
