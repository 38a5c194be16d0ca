// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"keygen"},
		{"migrate"},
		{"tx", "approve"},
		{"tx", "reject"},
		{"user", "promote"},
		{"tokens", "prune"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestKeygenWritesKeyPair(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"keygen", "--private", priv, "--public", pub})
	require.NoError(t, root.Execute())

	info, err := os.Stat(priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(pub)
	require.NoError(t, err)
	assert.Contains(t, out.String(), priv)
}

func TestTxRequiresAdmin(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"tx", "approve", "some-id"})
	assert.Error(t, root.Execute())
}
