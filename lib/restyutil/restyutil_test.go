package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	DumpMessages(client, "page", output)

	_, err = client.R().
		SetHeader("Authorization", "Bearer secret").
		SetBody("ping").
		Post(server.URL)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(output.Dir(), "page-001.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "POST "+server.URL)
	require.Contains(t, string(contents), "Authorization: <redacted>")
	require.NotContains(t, string(contents), "secret")
	require.Contains(t, string(contents), "ping")
	require.Contains(t, string(contents), "200 ")
	require.Contains(t, string(contents), "pong")
}

func TestDumpMessagesNilOutput(t *testing.T) {
	require.NotPanics(t, func() {
		DumpMessages(resty.New(), "page", nil)
	})
}

func TestFilesystemOutputKeepsExistingFiles(t *testing.T) {
	workdir := t.TempDir()
	state := filepath.Join(workdir, "data.json")
	require.NoError(t, os.WriteFile(state, []byte(`{"data":[[1,2,3,4]]}`), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(workdir, "logs"), 0o755))

	first, err := NewFilesystemOutput(workdir)
	require.NoError(t, err)
	second, err := NewFilesystemOutput(workdir)
	require.NoError(t, err)
	require.NotEqual(t, first.Dir(), second.Dir())
	require.Equal(t, workdir, filepath.Dir(first.Dir()))

	first.Write("page-001.txt", "dump")

	contents, err := os.ReadFile(state)
	require.NoError(t, err)
	require.Equal(t, `{"data":[[1,2,3,4]]}`, string(contents))
	_, err = os.Stat(filepath.Join(workdir, "logs"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(first.Dir(), "page-001.txt"))
	require.NoError(t, err)
}
