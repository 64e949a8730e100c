package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	require.PanicsWithValue(t, "expected store to be not nil", func() {
		NotNil(nil, "store")
	})
	require.NotPanics(t, func() {
		NotNil(struct{}{}, "store")
	})
}

func TestNotEmptyStr(t *testing.T) {
	require.PanicsWithValue(t, "expected url to be a non-empty string", func() {
		NotEmptyStr("", "url")
	})
	require.NotPanics(t, func() {
		NotEmptyStr("https://example.com", "url")
	})
}
