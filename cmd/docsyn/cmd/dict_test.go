package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsyn/internal/config"
	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

func TestDictCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	dictCmd, _, err := cmd.Find([]string{"dict"})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, sc := range dictCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
	assert.True(t, names["import"])
}

func TestDictList_ShowsBundled(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "dict", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "nicknames:")
	assert.Contains(t, out, filepath.Join("bundled", "nicknames.json"))
	assert.Contains(t, out, "universities:")
}

func TestDictList_ProjectPathShadowsBundled(t *testing.T) {
	project := isolate(t)
	dir := filepath.Join(project, "dictionaries")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nicknames.yaml"), []byte("bob: [rob]\n"), 0o644))
	writeProjectConfig(t, project, "dictionaries:\n  paths: [dictionaries]\n")

	out, err := execute(t, "--config-dir", project, "dict", "list")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "nicknames.yaml"))

	out, err = execute(t, "--config-dir", project, "expand", "-d", "nicknames", "rob")
	require.NoError(t, err)
	assert.Contains(t, out, "rob → bob, rob")
}

func TestDictShow_PrefixJSON(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "dict", "show", "nicknames", "--prefix", "Vic", "--json")
	require.NoError(t, err)

	var terms map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &terms))
	assert.Len(t, terms, 3)
	assert.Equal(t, []string{"victor", "vick", "vic"}, terms["vick"])
}

func TestDictShow_Text(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "dict", "show", "nicknames", "--prefix", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "nicknames (")
	assert.Contains(t, out, `No keys start with "zzz"`)

	_, err = execute(t, "--config-dir", project, "dict", "show", "klingon")
	assert.ErrorIs(t, err, derrors.ErrSourceNotFound)
}

func TestDictShow_KeyOnlyFromConfig(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  key_only: true\n  quote_match: true\n")

	out, err := execute(t, "--config-dir", project, "dict", "show", "universities", "--prefix", "umich", "--json")
	require.NoError(t, err)

	var terms map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &terms))
	assert.Equal(t, map[string][]string{"umich": {`"University of Michigan"`}}, terms)
}

func TestDictImport_ThenUse(t *testing.T) {
	project := isolate(t)
	src := filepath.Join(t.TempDir(), "infra.yaml")
	require.NoError(t, os.WriteFile(src, []byte("kubernetes: [k8s, kube]\npostgres: pg\n"), 0o644))

	out, err := execute(t, "--config-dir", project, "dict", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported dictionary "infra"`)
	assert.FileExists(t, filepath.Join(config.GetUserDictionaryDir(), "infra.json"))

	out, err = execute(t, "--config-dir", project, "expand", "-d", "infra", "k8s")
	require.NoError(t, err)
	assert.Contains(t, out, "k8s → kubernetes, k8s, kube")

	_, err = execute(t, "--config-dir", project, "dict", "import", src)
	assert.Equal(t, derrors.ErrCodeInvalidInput, derrors.GetCode(err))

	_, err = execute(t, "--config-dir", project, "dict", "import", src, "--name", "ops", "--format", "toml", "--force")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(config.GetUserDictionaryDir(), "ops.toml"))
}

func TestDictImport_Rejects(t *testing.T) {
	project := isolate(t)
	dir := t.TempDir()

	_, err := execute(t, "--config-dir", project, "dict", "import", filepath.Join(dir, "words.txt"))
	assert.Equal(t, derrors.ErrCodeUnknownFormat, derrors.GetCode(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a": 1}`), 0o644))
	_, err = execute(t, "--config-dir", project, "dict", "import", bad)
	assert.ErrorIs(t, err, derrors.ErrSourceInvalid)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"a": ["b"]}`), 0o644))
	_, err = execute(t, "--config-dir", project, "dict", "import", good, "--name", "../x")
	assert.Equal(t, derrors.ErrCodeInvalidPath, derrors.GetCode(err))
}
