package daemon

import (
	"context"
	"testing"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()

	logNotifier(logger).Notify(context.Background(), domain.NoticeNoNearbyFound)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, domain.NoticeNoNearby, entry.Data["kind"])
	assert.Equal(t, "No restaurants found nearby.", entry.Data["message"])
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := ServeCmd()

	flag := cmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "8080", flag.DefValue)
}

func TestRunServe_RequiresAPIKey(t *testing.T) {
	t.Setenv("LUNCHPICK_KAKAO_REST_API_KEY", "")

	err := runServe(ServeCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LUNCHPICK_KAKAO_REST_API_KEY")
}
