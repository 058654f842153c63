package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-task-auth"
)

type controllerHarness struct {
	app      *fiber.App
	notifier *recordingNotifier
}

func newControllerHarness(t *testing.T) *controllerHarness {
	t.Helper()
	auther, _ := newTestAuther(t)
	notifier := &recordingNotifier{}
	auther.WithNotifier(notifier)

	app := fiber.New()
	uc := auth.RegisterUserRoutes(app, auther)
	require.NotNil(t, uc.Gate)

	return &controllerHarness{app: app, notifier: notifier}
}

func (h *controllerHarness) call(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = bytes.NewBufferString(p)
		default:
			b, err := json.Marshal(p)
			require.NoError(t, err)
			body = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(t, req)
}

func (h *controllerHarness) send(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestUserController_SessionLifecycle(t *testing.T) {
	h := newControllerHarness(t)

	status, out := h.call(t, "POST", "/users", "", map[string]any{
		"name":     "Andrew",
		"email":    "andrew@example.com",
		"password": "MyPass777!",
		"age":      27,
	})
	require.Equal(t, fiber.StatusCreated, status)
	token := out["token"].(string)
	user := out["user"].(map[string]any)
	assert.Equal(t, float64(27), user["age"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "tokens")

	status, out = h.call(t, "POST", "/users/login", "", map[string]any{"email": "andrew@example.com", "password": "MyPass777!"})
	require.Equal(t, fiber.StatusOK, status)
	second := out["token"].(string)

	status, out = h.call(t, "GET", "/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "andrew@example.com", out["email"])

	status, _ = h.call(t, "POST", "/users/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = h.call(t, "GET", "/users/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = h.call(t, "GET", "/users/me", second, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, out = h.call(t, "PATCH", "/users/me", second, map[string]any{"_id": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid updates!", out["error"])

	status, _ = h.call(t, "DELETE", "/users/me", second, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = h.call(t, "GET", "/users/me", second, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	assert.Len(t, h.notifier.Messages(), 2)
}

func TestUserController_BadPayloads(t *testing.T) {
	h := newControllerHarness(t)

	status, _ := h.call(t, "POST", "/users", "", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, out := h.call(t, "POST", "/users/login", "", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Unable to login", out["error"])

	status, out = h.call(t, "POST", "/users", "", map[string]any{"name": "A", "email": "bad", "password": "56what!!"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	errs, ok := out["error"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestUserController_AvatarRequiresFile(t *testing.T) {
	h := newControllerHarness(t)

	_, out := h.call(t, "POST", "/users", "", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "56what!!"})
	token := out["token"].(string)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/users/me/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, _ := h.send(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = h.call(t, "GET", "/users/not-a-uuid/avatar", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
