package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ValidateToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{
			Code:  codeTokenValid,
			Token: tokenInfo{User: "quakemap", Scopes: []string{"styles:tiles"}},
		}))
	}))
	defer srv.Close()

	err := testClient(srv.URL).ValidateToken(context.Background())
	require.NoError(t, err)
}

func TestClient_ValidateToken_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"TokenInvalid"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).ValidateToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "TokenInvalid")
}

func TestClient_ValidateToken_ExpiredWith200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"code":"TokenExpired"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).ValidateToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TokenExpired")
}

func TestClient_ValidateToken_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	err := testClient(srv.URL).ValidateToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_ValidateToken_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	err := c.ValidateToken(context.Background())
	require.Error(t, err)
}

func TestTileLayers(t *testing.T) {
	layers := TileLayers(testToken)

	require.Len(t, layers, 3)
	assert.Equal(t, []string{LayerLight, LayerDark, LayerSatellite},
		[]string{layers[0].Name, layers[1].Name, layers[2].Name})
	assert.Equal(t, "mapbox.dark", layers[1].ID)
	for _, l := range layers {
		assert.Equal(t, TileURLTemplate, l.URLTemplate)
		assert.Equal(t, testToken, l.AccessToken)
		assert.Equal(t, 18, l.MaxZoom)
		assert.Contains(t, l.Attribution, "OpenStreetMap")
	}
}
