//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const testRESTKey = "0123456789abcdef0123456789abcdef"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Kakao      *FakeKakao
	KakaoURL   string
	ServerURL  string
	BinaryDir  string
	ConfigHome string
	HTTPClient *http.Client

	kakaoServer *httptest.Server
	daemon      *exec.Cmd
	daemonLog   *bytes.Buffer
}

// SetupE2EEnv builds both binaries, starts a fake Kakao Local API and runs
// lunchpickd against it.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	fake := NewFakeKakao()
	kakaoServer := httptest.NewServer(fake)

	env := &E2ETestEnv{
		T:           t,
		Ctx:         ctx,
		Kakao:       fake,
		KakaoURL:    kakaoServer.URL,
		ConfigHome:  t.TempDir(),
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		kakaoServer: kakaoServer,
	}
	env.BuildBinaries()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	env.startDaemon(port)

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.daemon != nil && e.daemon.Process != nil {
		_ = e.daemon.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() {
			_ = e.daemon.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = e.daemon.Process.Kill()
		}
	}
	if e.kakaoServer != nil {
		e.kakaoServer.Close()
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the lunchpick and lunchpickd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "lunchpick-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"lunchpickd", "lunchpick"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

func (e *E2ETestEnv) startDaemon(port int) {
	e.daemonLog = &bytes.Buffer{}
	cmd := exec.Command(filepath.Join(e.BinaryDir, "lunchpickd"), "serve")
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("LUNCHPICK_PORT=%d", port),
		"LUNCHPICK_KAKAO_REST_API_KEY="+testRESTKey,
		"LUNCHPICK_KAKAO_BASE_URL="+e.KakaoURL,
		"LUNCHPICK_KAKAO_JS_API_KEY=",
		"LUNCHPICK_LOCATE_URL=",
		"LUNCHPICK_SENTRY_DSN=",
	)
	cmd.Stdout = e.daemonLog
	cmd.Stderr = e.daemonLog
	if err := cmd.Start(); err != nil {
		e.T.Fatalf("failed to start lunchpickd: %v", err)
	}
	e.daemon = cmd

	e.ServerURL = fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, e.ServerURL, 10*time.Second, e.daemonLog)
}

// RunLunchpick runs the lunchpick CLI command against the fake Kakao API
func (e *E2ETestEnv) RunLunchpick(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "lunchpick"), args...)
	cmd.Env = append(os.Environ(),
		"LUNCHPICK_KAKAO_REST_API_KEY="+testRESTKey,
		"LUNCHPICK_KAKAO_BASE_URL="+e.KakaoURL,
		"XDG_CONFIG_HOME="+e.ConfigHome,
		"HOME="+e.ConfigHome,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
	Notice *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"notice,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body)
}

// Put performs a PUT request
func (e *E2ETestEnv) Put(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPut, path, body)
}

// doRequest returns error responses as values so tests can inspect notices.
func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	apiResp.Status = resp.StatusCode
	return &apiResp, nil
}

// Download fetches a raw body, such as the rendered map.
func (e *E2ETestEnv) Download(path string) ([]byte, string, error) {
	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	return data, resp.Header.Get("Content-Type"), err
}

// FakeKakao answers the Kakao Local search endpoints from canned documents.
type FakeKakao struct {
	mu       sync.Mutex
	requests []*http.Request
	fail     bool
}

func NewFakeKakao() *FakeKakao {
	return &FakeKakao{}
}

// SetFailing makes every later request answer 500.
func (f *FakeKakao) SetFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// Requests returns a copy of the requests received so far.
func (f *FakeKakao) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *FakeKakao) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	fail := f.fail
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "KakaoAK "+testRESTKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorType":"AccessDeniedError","message":"wrong appKey"}`))
		return
	}
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errorType":"InternalError","message":"upstream down"}`))
		return
	}

	q := r.URL.Query()
	docs := []map[string]string{}
	switch r.URL.Path {
	case "/v2/local/search/address.json":
		if q.Get("query") == "여수시청" {
			docs = append(docs, map[string]string{
				"address_name": "전남 여수시 학동 100",
				"x":            "127.6622",
				"y":            "34.7604",
			})
		}
	case "/v2/local/search/keyword.json":
		switch {
		case q.Get("x") != "" && q.Get("query") == "식당":
			docs = append(docs,
				restaurant("11", "학동국밥", "음식점 > 한식 > 국밥"),
				restaurant("12", "시청앞돈까스", "음식점 > 일식 > 돈까스,우동"),
				restaurant("13", "여수포차", "음식점 > 술집 > 실내포장마차"),
				restaurant("14", "학동짜장", "음식점 > 중식 > 중국요리"),
			)
		case q.Get("query") == "돌산갓김치" && q.Get("category_group_code") == "":
			docs = append(docs, restaurant("21", "돌산갓김치판매장", "가정,생활 > 식품판매"))
		}
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"meta":      map[string]interface{}{"total_count": len(docs), "pageable_count": len(docs), "is_end": true},
		"documents": docs,
	})
}

func restaurant(id, name, category string) map[string]string {
	return map[string]string{
		"id":                  id,
		"place_name":          name,
		"category_name":       category,
		"category_group_code": "FD6",
		"address_name":        "전남 여수시 학동 " + id,
		"x":                   "127.663",
		"y":                   "34.761",
		"distance":            id + "0",
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration, log *bytes.Buffer) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v\n%s", timeout, log.String())
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
