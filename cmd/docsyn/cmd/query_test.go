package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

func TestExpandCmd_ConfiguredDictionary(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: nicknames\n")

	out, err := execute(t, "--config-dir", project, "expand", "victor", "foo")

	require.NoError(t, err)
	assert.Contains(t, out, "victor → victor, vick, vic\n")
	assert.Contains(t, out, "foo → foo\n")
}

func TestExpandCmd_DictionaryFlagAndJSON(t *testing.T) {
	project := isolate(t)

	out, err := execute(t, "--config-dir", project, "expand", "-d", "universities", "--json", "umich", "harvard")
	require.NoError(t, err)

	var results []expandResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Matched)
	assert.ElementsMatch(t, []string{"University of Michigan", "umich", "u of m"}, results[0].Words)
	assert.Equal(t, expandResult{Term: "harvard", Words: []string{"harvard"}}, results[1])
}

func TestExpandCmd_NoDictionary(t *testing.T) {
	project := isolate(t)

	_, err := execute(t, "--config-dir", project, "expand", "victor")

	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeConfigInvalid, derrors.GetCode(err))
	assert.Contains(t, derrors.FormatForCLI(err), "Pass --dictionary")
}

func TestExpandCmd_UnknownDictionary(t *testing.T) {
	project := isolate(t)

	_, err := execute(t, "--config-dir", project, "expand", "-d", "klingon", "qapla")

	assert.ErrorIs(t, err, derrors.ErrSourceNotFound)
}

func TestRewriteCmd_TextSearch(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: nicknames\n")

	out, err := execute(t, "--config-dir", project, "rewrite", `{"$text": {"$search": "victor foo"}, "age": 3}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"$search": "victor vick vic foo"}, got["$text"])
	assert.Equal(t, float64(3), got["age"])
}

func TestRewriteCmd_FieldsFromStdin(t *testing.T) {
	project := isolate(t)

	cmd := NewRootCmd()
	buf := new(strings.Builder)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader(`{"alias": {"$in": ["dave", "foo"]}, "firstName": "vic"}`))
	cmd.SetArgs([]string{"--config-dir", project, "rewrite", "-d", "nicknames", "--fields", "alias", "-"})
	require.NoError(t, cmd.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &got))
	assert.Equal(t, map[string]any{"$in": []any{"david", "dave", "davy", "vida", "foo"}}, got["alias"])
	assert.Equal(t, "vic", got["firstName"])
}

func TestRewriteCmd_InvalidJSON(t *testing.T) {
	project := isolate(t)

	_, err := execute(t, "--config-dir", project, "rewrite", "-d", "nicknames", `{"broken"`)
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeInvalidInput, derrors.GetCode(err))

	_, err = execute(t, "--config-dir", project, "rewrite", "-d", "nicknames", "null")
	assert.Equal(t, derrors.ErrCodeInvalidInput, derrors.GetCode(err))
}

func writeDocs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.json")
	docs := `[
  {"_id": "1", "firstName": "vic", "title": "Site reliability lead"},
  {"_id": "2", "firstName": "dave", "title": "Backend developer"},
  {"_id": "3", "firstName": "ann", "title": "Frontend developer", "description": "Works with victor"}
]`
	require.NoError(t, os.WriteFile(path, []byte(docs), 0o644))
	return path
}

func TestFindCmd_ExpandsPlainField(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: nicknames\n  fields: [firstName]\n")
	docs := writeDocs(t)

	out, err := execute(t, "--config-dir", project, "find", docs, `{"firstName": "victor"}`)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0]["_id"])
}

func TestFindCmd_TextSearchCountAndOne(t *testing.T) {
	project := isolate(t)
	writeProjectConfig(t, project, "synonyms:\n  dictionary: nicknames\n")
	docs := writeDocs(t)

	out, err := execute(t, "--config-dir", project, "find", "--count", docs, `{"$text": {"$search": "vic"}}`)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = execute(t, "--config-dir", project, "find", "--one", docs, `{"$text": {"$search": "developer"}}`)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2", doc["_id"])
}

func TestFindCmd_NoMatchesPrintsEmptyArray(t *testing.T) {
	project := isolate(t)
	docs := writeDocs(t)

	out, err := execute(t, "--config-dir", project, "find", docs, `{"firstName": "zed"}`)

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestFindCmd_Errors(t *testing.T) {
	project := isolate(t)

	_, err := execute(t, "--config-dir", project, "find", filepath.Join(project, "missing.json"), `{}`)
	assert.Equal(t, derrors.ErrCodeInvalidPath, derrors.GetCode(err))

	bad := filepath.Join(project, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644))
	_, err = execute(t, "--config-dir", project, "find", bad, `{}`)
	assert.Equal(t, derrors.ErrCodeInvalidInput, derrors.GetCode(err))

	_, err = execute(t, "--config-dir", project, "find", writeDocs(t), `{"age": {"$where": "1"}}`)
	assert.ErrorIs(t, err, derrors.ErrInvalidQuery)
}
