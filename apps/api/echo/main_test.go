package echoapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/kokulite/apps/api/echo"
	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/announcement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	emailsvc "github.com/trezcool/kokulite/services/email"
	inmemdb "github.com/trezcool/kokulite/storage/database/inmem"
	"github.com/trezcool/kokulite/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server  *echoapi.Server
	store   *inmemdb.Store
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testApp {
	t.Helper()

	conf := *core.Conf
	conf.Debug = false // errors as JSON objects
	conf.TestMode = true

	store := testutil.NewStore()
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()
	mailSvc := emailsvc.NewConsoleServiceMock(&conf, logger)

	usrSvc := user.NewService(store, logger)
	rosterSvc := roster.NewService(store, usrSvc, validate, logger)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            &conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		UserSvc:         usrSvc,
		UnitSvc:         unit.NewService(store),
		RosterSvc:       rosterSvc,
		AttendanceSvc:   attendance.NewService(store, rosterSvc, validate, logger),
		ReportSvc:       report.NewService(store, usrSvc, mailSvc, validate, logger),
		AchievementSvc:  achievement.NewService(store, rosterSvc, validate, logger),
		ReviewSvc:       review.NewService(store),
		AnnouncementSvc: announcement.NewService(store, validate, logger),
		DisableReqLogs:  true,
	})
	return testApp{server: server, store: store, mailSvc: mailSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest posts file as the multipart field "file" along with the given form values.
func newUploadRequest(t *testing.T, path, token string, file []byte, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if file != nil {
		fw, err := w.CreateFormFile("file", "roster.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tc.path, tc.token, tc.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tc, rec)
		})
	}
}

// do sends obj, JSON encoded unless nil, and returns the recorded response.
func (app testApp) do(t *testing.T, method, path, token string, obj interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data [][]byte
	if obj != nil {
		data = append(data, marchallObj(t, obj))
	}
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}
