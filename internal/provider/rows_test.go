package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"datafeed/internal/provider"
)

func TestRows(t *testing.T) {
	t.Parallel()

	rows, err := provider.Rows([]any{map[string]any{"a": 1}, map[string]any{"a": 2}})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = provider.Rows(map[string]any{"a": 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = provider.Rows(nil)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = provider.Rows([]any{"x"})
	require.Error(t, err)

	_, err = provider.Rows("x")
	require.Error(t, err)
}
