//go:build e2e

package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Name          string `json:"name"`
	FullAddress   string `json:"full_address"`
	CategoryLabel string `json:"category_label"`
	Display       string `json:"display"`
}

type placesData struct {
	Places []place `json:"places"`
	Count  int     `json:"count"`
}

type stateData struct {
	ID           string  `json:"id"`
	Query        string  `json:"query"`
	RadiusMeters float64 `json:"radius_meters"`
	Candidates   []place `json:"candidates"`
	Restaurants  []place `json:"restaurants"`
	MapReady     bool    `json:"map_ready"`
}

func decodePlaces(t *testing.T, resp *APIResponse) placesData {
	t.Helper()
	var data placesData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func (e *E2ETestEnv) state(t *testing.T) stateData {
	t.Helper()
	resp, err := e.Get("/api/state")
	require.NoError(t, err)
	require.Equal(t, 200, resp.Status)

	var data stateData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

// TestE2E_SearchFlow walks the page flow: search, pick a candidate, recommend.
func TestE2E_SearchFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("initial state", func(t *testing.T) {
		st := env.state(t)
		assert.NotEmpty(t, st.ID)
		assert.Equal(t, 2000.0, st.RadiusMeters)
		assert.Empty(t, st.Candidates)
		assert.Empty(t, st.Restaurants)
		assert.Eventually(t, func() bool { return env.state(t).MapReady }, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("search lists address candidates", func(t *testing.T) {
		resp, err := env.Post("/api/search", map[string]string{"query": "  여수시청 "})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)

		data := decodePlaces(t, resp)
		require.Equal(t, 1, data.Count)
		assert.Equal(t, "전남 여수시 학동 100", data.Places[0].Display)
		assert.Equal(t, "여수시청", env.state(t).Query)
	})

	t.Run("select candidate lists restaurants", func(t *testing.T) {
		resp, err := env.Post("/api/candidates/0/select", nil)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)
		assert.Equal(t, 4, decodePlaces(t, resp).Count)

		st := env.state(t)
		assert.Empty(t, st.Candidates)
		assert.Len(t, st.Restaurants, 4)
		assert.Equal(t, "전남 여수시 학동 100", st.Query)
	})

	t.Run("recommend filters and samples", func(t *testing.T) {
		resp, err := env.Post("/api/recommend", map[string]interface{}{
			"include": "음식점",
			"exclude": "술집",
			"count":   2,
		})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)

		data := decodePlaces(t, resp)
		require.Equal(t, 2, data.Count)
		for _, p := range data.Places {
			assert.NotContains(t, p.CategoryLabel, "술집")
		}
		assert.Len(t, env.state(t).Restaurants, 2)
	})

	t.Run("recommend with larger count returns everything left", func(t *testing.T) {
		resp, err := env.Post("/api/recommend", map[string]interface{}{"count": 10})
		require.NoError(t, err)
		assert.Equal(t, 2, decodePlaces(t, resp).Count)
	})

	t.Run("map image is rendered", func(t *testing.T) {
		var (
			body        []byte
			contentType string
			err         error
		)
		require.Eventually(t, func() bool {
			body, contentType, err = env.Download("/map.png")
			return err == nil
		}, 5*time.Second, 50*time.Millisecond)

		assert.Equal(t, "image/png", contentType)
		assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))
	})

	t.Run("kakao map page is not configured", func(t *testing.T) {
		_, _, err := env.Download("/map")
		assert.Error(t, err)
	})
}

func TestE2E_SearchEdgeCases(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("empty query is rejected", func(t *testing.T) {
		resp, err := env.Post("/api/search", map[string]string{"query": "   "})
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	})

	t.Run("recommend before any search is rejected", func(t *testing.T) {
		resp, err := env.Post("/api/recommend", nil)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Status)
	})

	t.Run("unrestricted keyword fallback", func(t *testing.T) {
		resp, err := env.Post("/api/search", map[string]string{"query": "돌산갓김치"})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)

		data := decodePlaces(t, resp)
		require.Equal(t, 1, data.Count)
		assert.Equal(t, "돌산갓김치판매장", data.Places[0].Name)
	})

	t.Run("no results carries a notice", func(t *testing.T) {
		resp, err := env.Post("/api/search", map[string]string{"query": "없는동네"})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)

		assert.Equal(t, 0, decodePlaces(t, resp).Count)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, "no_results", resp.Notice.Kind)
	})

	t.Run("radius is used by nearby searches", func(t *testing.T) {
		resp, err := env.Put("/api/radius", map[string]float64{"radius_meters": 750})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)

		resp, err = env.Post("/api/nearby", map[string]float64{"lat": 34.7604, "lon": 127.6622})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)
		assert.Equal(t, 4, decodePlaces(t, resp).Count)

		reqs := env.Kakao.Requests()
		last := reqs[len(reqs)-1]
		assert.Equal(t, "750", last.URL.Query().Get("radius"))
		assert.Equal(t, "127.6622", last.URL.Query().Get("x"))
	})

	t.Run("invalid radius is rejected", func(t *testing.T) {
		resp, err := env.Put("/api/radius", map[string]float64{"radius_meters": 0})
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Status)
		assert.Equal(t, 750.0, env.state(t).RadiusMeters)
	})

	t.Run("upstream failure keeps the working list", func(t *testing.T) {
		env.Kakao.SetFailing(true)
		defer env.Kakao.SetFailing(false)

		resp, err := env.Post("/api/nearby", map[string]float64{"lat": 34.7, "lon": 127.6})
		require.NoError(t, err)
		assert.Equal(t, 502, resp.Status)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, "search_failed", resp.Notice.Kind)
		assert.Len(t, env.state(t).Restaurants, 4)
	})

	t.Run("locate without a locator", func(t *testing.T) {
		resp, err := env.Post("/api/locate", nil)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.Status)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, "location_unsupported", resp.Notice.Kind)
	})

	t.Run("locate with a browser position", func(t *testing.T) {
		resp, err := env.Post("/api/locate", map[string]float64{"lat": 34.7604, "lon": 127.6622})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)
		assert.Equal(t, 4, decodePlaces(t, resp).Count)
	})
}

func TestE2E_CLI(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("search and select", func(t *testing.T) {
		out, err := env.RunLunchpick("search", "여수시청", "--select", "1")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Around 전남 여수시 학동 100")
		assert.Contains(t, out, "Found 4 restaurants")
	})

	t.Run("recommend around a coordinate", func(t *testing.T) {
		out, err := env.RunLunchpick("recommend", "--lat", "34.7604", "--lon", "127.6622",
			"--include", "중식", "--output")
		require.NoError(t, err, out)

		var rows []place
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "학동짜장", rows[0].Name)
	})

	t.Run("recommend writes a map", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lunch.png")
		out, err := env.RunLunchpick("recommend", "여수시청", "--count", "2", "--map", path)
		require.NoError(t, err, out)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("no results prints a notice", func(t *testing.T) {
		out, err := env.RunLunchpick("search", "없는동네")
		require.NoError(t, err, out)
		assert.Contains(t, out, "No results found.")
	})

	t.Run("auth status reports env key", func(t *testing.T) {
		out, err := env.RunLunchpick("auth", "status")
		require.NoError(t, err, out)
		assert.Contains(t, out, "env")
	})
}
