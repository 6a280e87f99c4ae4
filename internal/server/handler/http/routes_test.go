package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/usersvc/internal/models"
	"github.com/atinyakov/usersvc/internal/repository"
	handler "github.com/atinyakov/usersvc/internal/server/handler/http"
	"github.com/atinyakov/usersvc/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t    *testing.T
	srv  *httptest.Server
	path string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	repo := repository.NewFileUserRepository(path)
	h := handler.NewUserHandler(service.NewUserService(repo), zap.NewNop())
	srv := httptest.NewServer(handler.NewRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, path: path}
}

func (s *testServer) do(method, path, body string) (int, string) {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, r)
	require.NoError(s.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	buf, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res.StatusCode, string(buf)
}

func (s *testServer) stored() models.Collection {
	s.t.Helper()
	buf, err := os.ReadFile(s.path)
	require.NoError(s.t, err)
	var users models.Collection
	require.NoError(s.t, json.Unmarshal(buf, &users))
	return users
}

func TestRouter_Scenario(t *testing.T) {
	s := newTestServer(t)
	ann := `{"id":1,"firstname":"Ann","secondname":"Lee","age":30,"city":"Oslo"}`

	code, body := s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30,"city":"Oslo"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1}`, body)

	code, body = s.do(http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user":`+ann+`}`, body)

	code, _ = s.do(http.MethodPut, "/users/1", `{"firstname":"An","secondname":"Lee","age":30,"city":"Oslo"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, models.Collection{{ID: 1, Firstname: "Ann", Secondname: "Lee", Age: 30, City: "Oslo"}}, s.stored())

	code, body = s.do(http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user":`+ann+`}`, body)

	code, body = s.do(http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"user":null}`, body)
}

func TestRouter_ListAndNextID(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"users":[]}`, body)

	require.NoError(t, os.WriteFile(s.path, []byte(`[{"id":4,"firstname":"Bob","secondname":"Ray","age":40}]`), 0o644))

	code, body = s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":5}`, body)

	code, body = s.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"users":[
		{"id":4,"firstname":"Bob","secondname":"Ray","age":40},
		{"id":5,"firstname":"Ann","secondname":"Lee","age":30}
	]}`, body)
}

func TestRouter_UpdateReplacesFields(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30,"city":"Oslo"}`)

	code, body := s.do(http.MethodPut, "/users/1", `{"firstname":"Anna","secondname":"Berg","age":31}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user":{"id":1,"firstname":"Anna","secondname":"Berg","age":31}}`, body)
	assert.Equal(t, models.Collection{{ID: 1, Firstname: "Anna", Secondname: "Berg", Age: 31}}, s.stored())
}

func TestRouter_AbsentIDs(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30}`)
	valid := `{"firstname":"Ann","secondname":"Lee","age":30}`

	for _, id := range []string{"2", "0", "-1", "abc"} {
		for _, tc := range []struct{ method, body string }{
			{http.MethodGet, ""},
			{http.MethodPut, valid},
			{http.MethodDelete, ""},
		} {
			code, body := s.do(tc.method, "/users/"+id, tc.body)
			assert.Equal(t, http.StatusNotFound, code, "%s /users/%s", tc.method, id)
			assert.JSONEq(t, `{"user":null}`, body, "%s /users/%s", tc.method, id)
		}
	}
	assert.Len(t, s.stored(), 1)
}

func TestRouter_DeleteTwice(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30}`)
	s.do(http.MethodPost, "/users", `{"firstname":"Bob","secondname":"Ray","age":40}`)

	code, _ := s.do(http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, s.stored(), 1)

	for range 2 {
		code, body := s.do(http.MethodDelete, "/users/1", "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.JSONEq(t, `{"user":null}`, body)
		assert.Len(t, s.stored(), 1)
	}
}

func TestRouter_CreateSkipsMistypedFields(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/users", `{"firstname":5,"secondname":"Lee","age":"30","city":"Oslo"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1}`, body)
	assert.Equal(t, models.Collection{{ID: 1, Secondname: "Lee", City: "Oslo"}}, s.stored())

	code, _ = s.do(http.MethodPost, "/users", `{"firstname":"Ann"} garbage`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, s.stored(), 1)
}

func TestRouter_InvalidUpdatesLeaveUserUnchanged(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/users", `{"firstname":"Ann","secondname":"Lee","age":30,"city":"Oslo"}`)
	before := s.stored()

	bodies := []string{
		`{"firstname":"An","secondname":"Lee","age":30}`,
		`{"firstname":"Ann","secondname":"Le","age":30}`,
		`{"firstname":"Ann","secondname":"Lee","age":17}`,
		`{"firstname":"Ann","secondname":"Lee","age":30,"city":"Os"}`,
		`{"secondname":"Lee","age":30}`,
		`{"firstname":"Ann","secondname":"Lee"}`,
		`{"firstname":"Ann","secondname":"Lee","age":30,"city":""}`,
		`{"firstname":"","secondname":"Lee","age":30}`,
		`{"firstname":"Ann","secondname":"Lee","age":0}`,
		`{"firstname":"Ann","secondname":"Lee","age":30} garbage`,
	}
	for _, b := range bodies {
		code, body := s.do(http.MethodPut, "/users/1", b)
		assert.Equal(t, http.StatusBadRequest, code, b)
		assert.Contains(t, body, `"error"`, b)
	}
	assert.Equal(t, before, s.stored())
}

func TestRouter_CorruptFileIsInternalError(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(s.path, []byte(`{broken`), 0o644))

	code, body := s.do(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"error":"internal error"}`, body)

	code, _ = s.do(http.MethodPost, "/users", `{"firstname":"Ann"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/users", bytes.NewBufferString("firstname=Ann"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Contains(t, string(body), `"error"`)
	_, err = os.Stat(s.path)
	assert.True(t, os.IsNotExist(err), "storage must not be touched")
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
