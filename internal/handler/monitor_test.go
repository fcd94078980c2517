package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"exchange-diary/internal/monitor"
	"exchange-diary/internal/notify"
)

type steadySource struct{ value float64 }

func (s steadySource) Fetch(ctx context.Context) (float64, error) { return s.value, nil }

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, text string) error { return nil }

func newMonitorRouter(t *testing.T) (*gin.Engine, *monitor.Monitor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := &monitor.Monitor{
		Source:       steadySource{value: 1325},
		PollInterval: time.Hour,
		NewNotifier: func(token, chatID string) (notify.Notifier, error) {
			return noopNotifier{}, nil
		},
	}
	engine := gin.New()
	(&MonitorHandler{Monitor: m}).Register(engine)
	return engine, m
}

func TestMonitorEndpoints_Lifecycle(t *testing.T) {
	engine, m := newMonitorRouter(t)
	defer func() { _ = m.Stop() }()

	w := doJSON(t, engine, http.MethodPost, "/start", gin.H{
		"upperLimit":     1400,
		"lowerLimit":     "1300",
		"telegramToken":  "token",
		"telegramChatId": "42",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Monitoring started", w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/start", gin.H{
		"upperLimit": 1400, "telegramToken": "token", "telegramChatId": "42",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Monitoring is already running", w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st monitor.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.True(t, st.Monitoring)
	require.Equal(t, "********", st.Settings.TelegramToken)
	require.Equal(t, "********", st.Settings.TelegramChatID)
	require.Equal(t, 1400.0, *st.Settings.UpperLimit)
	require.Equal(t, 1300.0, *st.Settings.LowerLimit, "string limit coerced to number")

	w = doJSON(t, engine, http.MethodPost, "/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Monitoring stopped", w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/stop", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Monitoring is not running", w.Body.String())
}

func TestMonitorEndpoints_MissingCredentials(t *testing.T) {
	engine, _ := newMonitorRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/start", gin.H{"upperLimit": 1400})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Telegram token and chat ID are required", w.Body.String())
}

func TestMonitorEndpoints_InvalidLimit(t *testing.T) {
	engine, _ := newMonitorRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/start", gin.H{
		"upperLimit":     "abc",
		"telegramToken":  "token",
		"telegramChatId": "42",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid limit values")
}

func TestFlexFloat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *float64
		err  bool
	}{
		{name: "number", in: `1350.5`, want: ptrFloat(1350.5)},
		{name: "numeric string", in: `"1350.5"`, want: ptrFloat(1350.5)},
		{name: "padded string", in: `" 1300 "`, want: ptrFloat(1300)},
		{name: "empty string", in: `""`, want: nil},
		{name: "null", in: `null`, want: nil},
		{name: "garbage string", in: `"abc"`, err: true},
		{name: "object", in: `{}`, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f flexFloat
			err := json.Unmarshal([]byte(tc.in), &f)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.want == nil {
				require.Nil(t, f.ptr())
			} else {
				require.NotNil(t, f.ptr())
				require.Equal(t, *tc.want, *f.ptr())
			}
		})
	}
}

func ptrFloat(v float64) *float64 { return &v }
