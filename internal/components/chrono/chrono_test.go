package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewStandardImpl(t *testing.T) {
	local, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, time.Local, local.Location())

	seoul, err := NewStandardImpl("Asia/Seoul")
	require.NoError(t, err)
	require.Equal(t, "Asia/Seoul", seoul.Location().String())
	require.Equal(t, "Asia/Seoul", seoul.Now().Location().String())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestFixed(t *testing.T) {
	at := time.Date(2020, time.March, 2, 9, 30, 0, 0, time.UTC)
	clock := Fixed{Time: at}
	require.Equal(t, at, clock.Now())
	require.Equal(t, time.UTC, clock.Location())
}
