package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		expectedUA string
	}{
		{name: "default user agent", expectedUA: DefaultUserAgent},
		{name: "custom user agent", userAgent: "test-agent/1.0", expectedUA: "test-agent/1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(time.Second, tt.userAgent)
			require.NotNil(t, m)
			assert.Equal(t, time.Second, m.client.Timeout)
			assert.Equal(t, tt.expectedUA, m.userAgent)
		})
	}
}

func TestFetch(t *testing.T) {
	const body = "archive bytes"
	tests := []struct {
		name     string
		status   int
		checksum string
		wantErr  error
	}{
		{name: "successful download", status: http.StatusOK},
		{name: "verified checksum", status: http.StatusOK, checksum: sum(body)},
		{name: "checksum mismatch", status: http.StatusOK, checksum: sum("other"), wantErr: ErrChecksumMismatch},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrDownloadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			u, err := url.Parse(server.URL + "/payload")
			require.NoError(t, err)

			m := NewManager(5*time.Second, "")
			path, err := m.Fetch(context.Background(), Item{ID: "midnight", URL: u, Checksum: tt.checksum}, Options{Dir: t.TempDir()})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, body, string(data))
		})
	}
}

func TestFetchReusesVerifiedFile(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("cached"))
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	item := Item{ID: "x", URL: u, Checksum: sum("cached"), Filename: "x.tar.gz"}
	opts := Options{Dir: t.TempDir()}
	m := NewManager(5*time.Second, "")

	first, err := m.Fetch(context.Background(), item, opts)
	require.NoError(t, err)
	second, err := m.Fetch(context.Background(), item, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRejectsRelativeDir(t *testing.T) {
	u, _ := url.Parse("http://example.invalid/x")
	_, err := NewManager(time.Second, "").Fetch(context.Background(), Item{ID: "x", URL: u}, Options{Dir: "relative"})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestFetchNilURL(t *testing.T) {
	_, err := NewManager(time.Second, "").Fetch(context.Background(), Item{ID: "x"}, Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrDownloadFailed)
}
