package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLogin_StoresCredentials(t *testing.T) {
	useTempConfig(t)
	var out bytes.Buffer

	err := runAuthLogin(strings.NewReader(""), &out, testKey, "http://kakao.test")
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, testKey, config.KakaoRESTAPIKey)
	assert.Equal(t, "http://kakao.test", config.KakaoBaseURL)
	assert.Contains(t, out.String(), "Successfully logged in")
}

func TestAuthLogin_PromptsForKey(t *testing.T) {
	useTempConfig(t)
	var out bytes.Buffer

	err := runAuthLogin(strings.NewReader(testKey+"\n"), &out, "", "")
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, testKey, config.KakaoRESTAPIKey)
	assert.Contains(t, out.String(), "Enter Kakao REST API key")
}

func TestAuthLogin_OverwritesExisting(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{KakaoRESTAPIKey: testGlobalKey}))

	err := runAuthLogin(strings.NewReader(""), &bytes.Buffer{}, testKey, "")
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, testKey, config.KakaoRESTAPIKey)
}

func TestAuthLogin_ValidatesKeyFormat(t *testing.T) {
	useTempConfig(t)

	err := runAuthLogin(strings.NewReader(""), &bytes.Buffer{}, "not-a-key", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key format")
	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestAuthLogout_ClearsGlobalConfig(t *testing.T) {
	_, configPath := useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{KakaoRESTAPIKey: testKey}))
	var out bytes.Buffer

	require.NoError(t, runAuthLogout(&out))

	assert.NoFileExists(t, configPath)
	assert.Contains(t, out.String(), "Successfully logged out")
}

func TestAuthStatus_ShowsGlobalSource(t *testing.T) {
	useTempConfig(t)
	t.Setenv(envAPIKey, "")
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{KakaoRESTAPIKey: testKey}))
	var out bytes.Buffer

	require.NoError(t, runAuthStatus(&out, "", false))

	assert.Contains(t, out.String(), "Source: global_config")
	assert.Contains(t, out.String(), "0123...cdef")
	assert.NotContains(t, out.String(), testKey)
}

func TestAuthStatus_ShowsNoAuth(t *testing.T) {
	useTempConfig(t)
	t.Setenv(envAPIKey, "")
	var out bytes.Buffer

	require.NoError(t, runAuthStatus(&out, "", false))

	assert.Contains(t, out.String(), "Not authenticated")
}

func TestAuthStatus_JSONOutput(t *testing.T) {
	useTempConfig(t)
	t.Setenv(envAPIKey, testEnvKey)
	var out bytes.Buffer

	require.NoError(t, runAuthStatus(&out, "", true))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, true, result["authenticated"])
	assert.Equal(t, "env", result["source"])
	assert.Equal(t, "eeee...eeee", result["api_key"])
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "***", maskAPIKey("short"))
	assert.Equal(t, "0123...cdef", maskAPIKey(testKey))
}

func TestAuthLogout_KeepsOtherSettings(t *testing.T) {
	_, configPath := useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{
		KakaoRESTAPIKey: testKey,
		KakaoBaseURL:    "http://kakao.test",
		RadiusMeters:    800,
	}))

	require.NoError(t, runAuthLogout(&bytes.Buffer{}))

	assert.FileExists(t, configPath)
	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Empty(t, config.KakaoRESTAPIKey)
	assert.Empty(t, config.KakaoBaseURL)
	assert.Equal(t, 800.0, config.RadiusMeters)
}
