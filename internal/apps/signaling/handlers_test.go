package signaling

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	plugin := New(dbtest.New(t, &CallSignal{}), nil)
	app := fiber.New()
	plugin.RegisterRoutes(app.Group("/" + plugin.ID()))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestSignalHandler_CallFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/call/offer", `{"from_id":1,"to_id":2,"sdp":"v=0 offer"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var offer CallSignal
	require.NoError(t, json.Unmarshal(body, &offer))
	assert.NotZero(t, offer.ID)
	assert.Equal(t, KindOffer, offer.Kind)
	assert.Equal(t, "v=0 offer", offer.Content)

	status, _ = doJSON(t, app, http.MethodPost, "/call/candidate", `{"from_id":1,"to_id":2,"candidate":{"candidate":"candidate:1","sdpMid":"0"}}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/call/answer", `{"from_id":2,"to_id":1,"sdp":"v=0 answer"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/call/poll/2", "")
	require.Equal(t, http.StatusOK, status)
	var forBob []CallSignal
	require.NoError(t, json.Unmarshal(body, &forBob))
	require.Len(t, forBob, 2)
	assert.Equal(t, KindOffer, forBob[0].Kind)
	assert.Equal(t, KindCandidate, forBob[1].Kind)
	assert.JSONEq(t, `{"candidate":"candidate:1","sdpMid":"0"}`, forBob[1].Content)

	status, body = doJSON(t, app, http.MethodGet, "/call/poll/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = doJSON(t, app, http.MethodGet, "/call/poll/1", "")
	require.Equal(t, http.StatusOK, status)
	var forAlice []CallSignal
	require.NoError(t, json.Unmarshal(body, &forAlice))
	require.Len(t, forAlice, 1)
	assert.Equal(t, KindAnswer, forAlice[0].Kind)
}

func TestSignalHandler_Rejections(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"offer without sdp", http.MethodPost, "/call/offer", `{"from_id":1,"to_id":2}`},
		{"answer without target", http.MethodPost, "/call/answer", `{"from_id":1,"sdp":"x"}`},
		{"candidate without sender", http.MethodPost, "/call/candidate", `{"to_id":2,"candidate":"c"}`},
		{"malformed json", http.MethodPost, "/call/offer", `{"from_id":`},
		{"non-numeric poll id", http.MethodGet, "/call/poll/bob", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			var errResp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.NotEmpty(t, errResp.Detail)
		})
	}
}
