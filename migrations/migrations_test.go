package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFS_HasGooseSections(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, n := range names {
		b, err := fs.ReadFile(FS, n)
		require.NoError(t, err)
		require.True(t, strings.Contains(string(b), "-- +goose Up"), n)
		require.True(t, strings.Contains(string(b), "-- +goose Down"), n)
	}
}
