package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erikbern/conversion/internal/telemetry"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()
	contents, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(contents)
}

func TestOpenLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.tsv")
	require.NoError(t, os.WriteFile(path, []byte("2010-01-01\t\n"), 0600))

	opener := NewOpener(Options{}, telemetry.NewRecorder())
	ctx := context.Background()

	r, err := opener.Open(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "2010-01-01\t\n", readAll(t, r))

	r, err = opener.Open(ctx, "file://"+path)
	require.NoError(t, err)
	require.Equal(t, "2010-01-01\t\n", readAll(t, r))

	_, err = opener.Open(ctx, filepath.Join(t.TempDir(), "missing.tsv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenHttp(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("user-agent")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("1262304000\t1293840000\t3\n"))
	}))
	defer server.Close()

	rec := telemetry.NewRecorder()
	opener := NewOpener(Options{
		RatePerSecond: 100,
		Timeout:       5 * time.Second,
		UserAgent:     "conversion-test",
	}, rec)
	ctx := context.Background()

	r, err := opener.Open(ctx, server.URL+"/tweets.tsv")
	require.NoError(t, err)
	require.Equal(t, "1262304000\t1293840000\t3\n", readAll(t, r))
	require.Equal(t, "conversion-test", userAgent)

	_, err = opener.Open(ctx, server.URL+"/missing")
	require.ErrorContains(t, err, "404")
	require.Len(t, rec.Reports("warning", "source: fetch"), 1)
}

func TestOpenUnsupported(t *testing.T) {
	opener := NewOpener(Options{}, telemetry.NewRecorder())
	_, err := opener.Open(context.Background(), "s3://bucket/loans.tsv")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}
