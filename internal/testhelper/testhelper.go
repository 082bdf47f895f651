// Package testhelper collects small fixtures shared across this
// repo's test files.
package testhelper

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a scratch directory named after the running test and
// returns a cleanup func to remove it.
func TempDir(t *testing.T) (dir string, cleanup func()) {
	dir, err := os.MkdirTemp("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)
	return dir, func() {
		require.NoError(t, os.RemoveAll(dir))
	}
}
