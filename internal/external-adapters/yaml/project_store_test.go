package yaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStore_Get(t *testing.T) {
	store, err := ParseProjectStore("forgedroid.yml", []byte(`name: My App
uuid: 0f8fad5b-d9cb-469f-a165-70867728950e
version: 2
modules:
  package_names:
    android: io.forgedroid.appabc
  list:
    - one
`))
	require.NoError(t, err)

	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{name: "top level", key: "name", want: "My App", wantOK: true},
		{name: "nested", key: "modules.package_names.android", want: "io.forgedroid.appabc", wantOK: true},
		{name: "integer", key: "version", want: "2", wantOK: true},
		{name: "missing", key: "modules.package_names.ios", wantOK: false},
		{name: "section is not scalar", key: "modules", wantOK: false},
		{name: "list is not scalar", key: "modules.list", wantOK: false},
		{name: "through scalar", key: "name.first", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := store.Get(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectStore_SetAndSave(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("name: demo\n"), 0600))

	store, err := LoadProjectStore(dir)
	require.NoError(t, err)

	store.Set("modules.package_names.android", "io.forgedroid.app123")
	require.NoError(t, store.Save())

	reloaded, err := LoadProjectStore(dir)
	require.NoError(t, err)

	name, ok := reloaded.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "demo", name)

	pkg, ok := reloaded.Get("modules.package_names.android")
	assert.True(t, ok)
	assert.Equal(t, "io.forgedroid.app123", pkg)
}

func TestProjectStore_LoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	store, err := LoadProjectStore(dir)
	require.NoError(t, err)

	_, ok := store.Get("name")
	assert.False(t, ok)

	// Nothing changed, nothing written
	require.NoError(t, store.Save())
	_, err = os.Stat(filepath.Join(dir, ProjectFileName))
	assert.True(t, os.IsNotExist(err))

	store.Set("uuid", "abc")
	require.NoError(t, store.Save())
	_, err = os.Stat(filepath.Join(dir, ProjectFileName))
	assert.NoError(t, err)
}

func TestProjectStore_InvalidYAML(t *testing.T) {
	_, err := ParseProjectStore("forgedroid.yml", []byte("name: [unclosed"))
	assert.Error(t, err)
}

func FuzzProjectStore(f *testing.F) {
	f.Add([]byte("name: test\nmodules:\n  package_names:\n    android: io.forgedroid.app\n"))
	f.Add([]byte(""))
	f.Add([]byte("- just\n- a list\n"))

	f.Fuzz(func(_ *testing.T, data []byte) {
		store, err := ParseProjectStore("forgedroid.yml", data)
		if err != nil {
			return
		}
		_, _ = store.Get("modules.package_names.android")
		store.Set("modules.package_names.android", "x")
	})
}
