package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, Save(path, &Config{ServerURL: "https://pacs.example.com", Token: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "server_url: https://pacs.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://pacs.example.com", cfg.ServerURL)
	require.Equal(t, "tok", cfg.Token)
}

func TestLoad_invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: [unterminated"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotConfigured)
}
