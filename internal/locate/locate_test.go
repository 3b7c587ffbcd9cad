package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_CurrentPosition(t *testing.T) {
	coord, err := Static{Lon: 127.1, Lat: 37.5}.CurrentPosition(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Coordinate{Lon: 127.1, Lat: 37.5}, coord)
}

func TestStatic_InvalidPosition(t *testing.T) {
	_, err := Static{Lon: 500, Lat: 37.5}.CurrentPosition(context.Background())

	assert.ErrorIs(t, err, domain.ErrLocationDenied)
}

func TestIPLocator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "status,message,lat,lon", r.URL.Query().Get("fields"))
		w.Write([]byte(`{"status":"success","lat":37.5665,"lon":126.978}`))
	}))
	defer srv.Close()

	coord, err := NewIPLocator(srv.URL).CurrentPosition(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 37.5665, coord.Lat)
	assert.Equal(t, 126.978, coord.Lon)
}

func TestIPLocator_FailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	_, err := NewIPLocator(srv.URL).CurrentPosition(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLocationDenied)
	assert.Contains(t, err.Error(), "private range")
}

func TestIPLocator_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewIPLocator(srv.URL).CurrentPosition(context.Background())

	assert.ErrorIs(t, err, domain.ErrLocationDenied)
	assert.Equal(t, domain.ErrCodePlatformCapability, domain.CodeOf(err))
}

func TestIPLocator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewIPLocator(url).CurrentPosition(context.Background())

	assert.ErrorIs(t, err, domain.ErrLocationDenied)
}

func TestNewIPLocator_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultIPLocateURL, NewIPLocator("").url)
}
