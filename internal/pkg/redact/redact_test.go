package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "***", TokenID(""))
	require.Equal(t, "***", TokenID("short"))
	require.Equal(t, "***", TokenID("12345678"))
	require.Equal(t, "0e4b9138***", TokenID("0e4b9138-9db1-4b33-b1c2-1e0d28a43c0f"))
}

func TestSecret(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_SECRET]", Secret())
}
