package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Settings{
	EndpointURL:         "https://collector.example.net/ingest",
	Secret:              "s3cr3t",
	AllowedDomains:      "kobaltdigital.nl, @alkmaarsch.nl",
	HideRestrictedMenus: true,
	Theme:               "ocean",
	AdminEmails:         "ops@kobaltdigital.nl",
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitCSV(" a, b ,,c ,"))
	assert.Nil(t, SplitCSV(""))
	assert.Nil(t, SplitCSV(" , "))
}

func TestSettings_IsAdmin(t *testing.T) {
	s := Settings{AdminEmails: "ops@kobaltdigital.nl, Root@Example.org"}

	assert.True(t, s.IsAdmin("ops@kobaltdigital.nl"))
	assert.True(t, s.IsAdmin("root@example.org"))
	assert.False(t, s.IsAdmin("alice@kobaltdigital.nl"))
	assert.False(t, s.IsAdmin(""))
	assert.False(t, Settings{}.IsAdmin("ops@kobaltdigital.nl"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(Settings{})
	require.NoError(t, m.SaveSettings(ctx, sample))

	got, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	fs := NewFileStore(path)

	require.NoError(t, fs.SaveSettings(ctx, sample))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := fs.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestFileStore_MissingFile(t *testing.T) {
	got, err := NewFileStore(filepath.Join(t.TempDir(), "missing.yaml")).Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Settings{}, got)
}

func TestFileStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint_url: [unclosed"), 0600))

	_, err := NewFileStore(path).Settings(context.Background())
	assert.Error(t, err)
}

func TestBoltStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	b, err := OpenBoltStore(path)
	require.NoError(t, err)

	empty, err := b.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, empty)

	require.NoError(t, b.SaveSettings(ctx, sample))
	require.NoError(t, b.Close())

	// Reopen to make sure the values were persisted.
	b, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestWithSecretFromEnv(t *testing.T) {
	ctx := context.Background()
	store := WithSecretFromEnv(NewMemoryStore(sample))

	t.Setenv(SecretEnv, "")
	got, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got.Secret)

	t.Setenv(SecretEnv, "from-env")
	got, err = store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.Secret)
	assert.Equal(t, sample.EndpointURL, got.EndpointURL)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name    string
		sc      StoreConfig
		wantErr bool
	}{
		{"memory", StoreConfig{Driver: DriverMemory}, false},
		{"file", StoreConfig{Driver: DriverFile, Path: filepath.Join(dir, "s.yaml")}, false},
		{"bolt", StoreConfig{Driver: DriverBolt, Path: filepath.Join(dir, "s.db")}, false},
		{"unknown", StoreConfig{Driver: "etcd"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store, closeFn, err := OpenStore(ctx, c.sc)
			require.NotNil(t, closeFn)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, store.SaveSettings(ctx, sample))
			got, err := store.Settings(ctx)
			require.NoError(t, err)
			assert.Equal(t, sample.EndpointURL, got.EndpointURL)
		})
	}
}
