package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeTLSConfig(t *testing.T) {
	t.Run("MissingCA", func(t *testing.T) {
		cfg, err := MakeTLSConfig(filepath.Join(t.TempDir(), "ca.pem"), "", "")
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("InvalidCA", func(t *testing.T) {
		ca := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(ca, []byte("not a pem"), 0o600))

		cfg, err := MakeTLSConfig(ca, "", "")
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrInvalidCA)
	})
}
