package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/auth"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser  = "6f1c2d2e-0b7a-4a8e-9d55-3f1f0b3b2a11"
	otherUser = "0d6a8b52-9a43-4c1e-8f0b-2c7e5d1a9f33"
)

var testSecret = []byte("test-secret")

// -------- fakes --------

type fakeDocs struct {
	DocumentService

	syncID    int32
	syncErr   error
	synced    []api.SyncPayload
	deleteErr error
	deleted   []any
	unified   []models.Document
	listErr   error
	table     string
	appIDs    []int32
}

func (f *fakeDocs) Sync(ctx context.Context, p api.SyncPayload) (int32, error) {
	f.synced = append(f.synced, p)
	return f.syncID, f.syncErr
}

func (f *fakeDocs) Delete(ctx context.Context, userID string, id any) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeDocs) ListUnified(ctx context.Context, userID string) ([]models.Document, error) {
	return f.unified, f.listErr
}

func (f *fakeDocs) ListBase(ctx context.Context, userID string) ([]models.Document, error) {
	return f.unified, f.listErr
}

func (f *fakeDocs) ListDetails(ctx context.Context, userID, table string, appIDs []int32) ([]models.Document, error) {
	f.table = table
	f.appIDs = appIDs
	return f.unified, f.listErr
}

type fakeMedia struct {
	MediaService

	urls   map[int32]api.MediaURLs
	single api.MediaURLs
	err    error
	ttl    time.Duration
	upload api.UploadURLResponse
}

func (f *fakeMedia) SignedURLs(ctx context.Context, userID string, appIDs []int32, ttl time.Duration) (map[int32]api.MediaURLs, error) {
	f.ttl = ttl
	return f.urls, f.err
}

func (f *fakeMedia) SignedURL(ctx context.Context, userID string, appID int32, ttl time.Duration) (api.MediaURLs, error) {
	f.ttl = ttl
	return f.single, f.err
}

func (f *fakeMedia) UploadURL(ctx context.Context, req api.UploadURLRequest) (api.UploadURLResponse, error) {
	return f.upload, f.err
}

type fakeUsage struct {
	usage models.Usage
	err   error
}

func (f *fakeUsage) GetUsage(ctx context.Context, userID string) (models.Usage, error) {
	return f.usage, f.err
}

type fakeDevices struct {
	err error
}

func (f *fakeDevices) Register(ctx context.Context, userID, deviceID, platform string) error {
	return f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fixture struct {
	docs    *fakeDocs
	media   *fakeMedia
	usage   *fakeUsage
	devices *fakeDevices
	router  http.Handler
}

func newFixture(t *testing.T, requireAuth bool) *fixture {
	t.Helper()
	f := &fixture{
		docs:    &fakeDocs{},
		media:   &fakeMedia{},
		usage:   &fakeUsage{},
		devices: &fakeDevices{},
	}
	h := NewHandler(f.docs, f.media, f.usage, f.devices, fakePinger{}, logging.Nop())
	f.router = NewRouter(h, RouterOptions{SecretKey: testSecret, RequireAuth: requireAuth}, logging.Nop())
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var e api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

// -------- tests --------

func TestSyncDocument_OK(t *testing.T) {
	f := newFixture(t, false)
	f.docs.syncID = 42

	rec := f.do(t, http.MethodPost, "/sync-document", api.SyncPayload{ID: 42, UserID: testUser, Name: "Passport"}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var ok api.OKResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.True(t, ok.OK)
	assert.Equal(t, int32(42), ok.ID)
	require.Len(t, f.docs.synced, 1)
	assert.Equal(t, "Passport", f.docs.synced[0].Name)
}

func TestSyncDocument_QuotaExceeded(t *testing.T) {
	f := newFixture(t, false)
	f.docs.syncErr = common.ErrQuotaExceeded

	rec := f.do(t, http.MethodPost, "/sync-document", api.SyncPayload{ID: 1, UserID: testUser}, "")

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	e := decodeErr(t, rec)
	assert.Equal(t, api.CodeQuotaExceeded, e.Code)
	assert.True(t, strings.HasPrefix(e.Error, api.QuotaMessagePrefix))
}

func TestSyncDocument_BadBody(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodPost, "/sync-document", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeInvalidRequest, decodeErr(t, rec).Code)
	assert.Empty(t, f.docs.synced)
}

func TestSyncDocument_InvalidUser(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/sync-document", api.SyncPayload{ID: 1, UserID: "nope"}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.docs.synced)
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodDelete, "/sync-document", api.DeletePayload{ID: "local-7", UserID: testUser}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"local-7"}, f.docs.deleted)

	f.docs.deleteErr = common.ErrNotFound
	rec = f.do(t, http.MethodDelete, "/sync-document", api.DeletePayload{ID: 9, UserID: testUser}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeNotFound, decodeErr(t, rec).Code)
}

func TestSignedURLs_KeyedByStringID(t *testing.T) {
	f := newFixture(t, false)
	f.media.urls = map[int32]api.MediaURLs{
		3:  {FrontSignedURL: "https://s3/front"},
		-5: {BackSignedURL: "https://s3/back"},
	}

	rec := f.do(t, http.MethodPost, "/signed-urls",
		api.SignedURLsRequest{UserID: testUser, AppIDs: []int32{3, -5}, TTL: 600}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]api.MediaURLs
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "https://s3/front", out["3"].FrontSignedURL)
	assert.Equal(t, "https://s3/back", out["-5"].BackSignedURL)
	assert.Equal(t, 10*time.Minute, f.media.ttl)
}

func TestSignedURL_Single(t *testing.T) {
	f := newFixture(t, false)
	f.media.single = api.MediaURLs{FrontSignedURL: "https://s3/f"}

	rec := f.do(t, http.MethodGet, "/signed-urls?userId="+testUser+"&appId=12&ttl=60", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Minute, f.media.ttl)
	assert.Contains(t, rec.Body.String(), "https://s3/f")
}

func TestSignedURL_BadParams(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name   string
		target string
	}{
		{"missing app id", "/signed-urls?userId=" + testUser},
		{"bad ttl", "/signed-urls?userId=" + testUser + "&appId=1&ttl=abc"},
		{"negative ttl", "/signed-urls?userId=" + testUser + "&appId=1&ttl=-1"},
		{"bad user", "/signed-urls?userId=x&appId=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, nil, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUsage(t *testing.T) {
	f := newFixture(t, false)
	f.usage.usage = models.Usage{UsedBytes: 100, EffectiveQuotaBytes: common.GiB}

	rec := f.do(t, http.MethodGet, "/usage?user_id="+testUser, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var u api.UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, api.UsageResponse{UsedBytes: 100, EffectiveQuotaBytes: common.GiB}, u)
}

func TestUsage_InternalErrorHidden(t *testing.T) {
	f := newFixture(t, false)
	f.usage.err = errors.New("s3 exploded: secret detail")

	rec := f.do(t, http.MethodGet, "/usage?user_id="+testUser, nil, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeErr(t, rec)
	assert.Equal(t, api.CodeInternal, e.Code)
	assert.NotContains(t, e.Error, "secret detail")
}

func TestListUnified(t *testing.T) {
	f := newFixture(t, false)
	f.docs.unified = []models.Document{{UserID: testUser, AppID: 5, Name: "ID card", Type: "id_card"}}

	rec := f.do(t, http.MethodGet, "/documents/unified?user_id="+testUser, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []api.RemoteRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int32(5), rows[0].AppID)
	assert.Equal(t, "ID card", rows[0].Name)
}

func TestListUnified_ViewUnavailable(t *testing.T) {
	f := newFixture(t, false)
	f.docs.listErr = common.ErrViewUnavailable

	rec := f.do(t, http.MethodGet, "/documents/unified?user_id="+testUser, nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.CodeViewUnavailable, decodeErr(t, rec).Code)
}

func TestListBase_EmptyIsArray(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/documents?user_id="+testUser, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListDetails(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/documents/details/passport_details?user_id="+testUser+"&app_ids=1,%203,,7", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "passport_details", f.docs.table)
	assert.Equal(t, []int32{1, 3, 7}, f.docs.appIDs)

	rec = f.do(t, http.MethodGet, "/documents/details/passport_details?user_id="+testUser+"&app_ids=1,x", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadURL(t *testing.T) {
	f := newFixture(t, false)
	f.media.upload = api.UploadURLResponse{Path: "users/u/1/front-x", URL: "https://s3/put"}

	rec := f.do(t, http.MethodPost, "/media/upload-url",
		api.UploadURLRequest{UserID: testUser, AppID: 1, Side: api.SideFront, Size: 10}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.UploadURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.media.upload, resp)
}

func TestRegisterDevice_LimitReached(t *testing.T) {
	f := newFixture(t, false)
	f.devices.err = common.ErrDeviceLimitReached

	rec := f.do(t, http.MethodPost, "/devices",
		api.DeviceRequest{UserID: testUser, DeviceID: "d4", Platform: "cli"}, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, api.CodeDeviceLimitReached, decodeErr(t, rec).Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h := NewHandler(f.docs, f.media, f.usage, f.devices, fakePinger{err: errors.New("down")}, logging.Nop())
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodGet, "/healthz", nil, "")

	rec := f.do(t, http.MethodGet, "/metrics", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docvault_http_requests_total")
}

func TestAuth(t *testing.T) {
	f := newFixture(t, true)

	good, err := auth.GenerateToken(testUser, testSecret, time.Hour)
	require.NoError(t, err)
	other, err := auth.GenerateToken(otherUser, testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken(testUser, testSecret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"missing token", "", http.StatusUnauthorized, api.CodeUnauthorized},
		{"garbage token", "abc.def.ghi", http.StatusUnauthorized, api.CodeUnauthorized},
		{"expired token", expired, http.StatusUnauthorized, api.CodeUnauthorized},
		{"other user's token", other, http.StatusForbidden, api.CodeForbidden},
		{"valid token", good, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/usage?user_id="+testUser, nil, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeErr(t, rec).Code)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{common.ErrQuotaExceeded, http.StatusPaymentRequired, api.CodeQuotaExceeded},
		{common.ErrSchemaMismatch, http.StatusUnprocessableEntity, api.CodeSchemaMismatch},
		{common.ErrViewUnavailable, http.StatusNotFound, api.CodeViewUnavailable},
		{common.ErrDeviceLimitReached, http.StatusConflict, api.CodeDeviceLimitReached},
		{common.ErrInvalidIdentity, http.StatusBadRequest, api.CodeInvalidRequest},
		{common.ErrInvalidUserID, http.StatusBadRequest, api.CodeInvalidRequest},
		{common.ErrTokenExpired, http.StatusUnauthorized, api.CodeUnauthorized},
		{common.ErrForbidden, http.StatusForbidden, api.CodeForbidden},
		{common.ErrNotFound, http.StatusNotFound, api.CodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, api.CodeInternal},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
