package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kokulite/core/announcement"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/tests"
)

func Test_announcementApi(t *testing.T) {
	app := setup(t)
	scouts := testutil.CreateUnit(t, app.store, "sch1", "Pengakap", unit.CategoryUniformed)
	advisor := testutil.CreateAdvisor(t, app.store, "sch1", "Cikgu Ahmad", "ahmad@smk.edu.my", scouts)
	secretary := testutil.CreateStaff(t, app.store, "sch1", "Puan Salmah", "salmah@smk.edu.my", user.RoleSecretary)
	ap := testutil.CreateStaff(t, app.store, "sch1", "Encik Hafiz", "hafiz@smk.edu.my", user.RoleAssistantPrincipal)
	outsider := testutil.CreateStaff(t, app.store, "sch2", "Puan Rosli", "rosli@sk.edu.my", user.RoleSecretary)

	na := announcement.NewAnnouncement{Title: "Hari Sukan", Content: "Sabtu, 8 pagi", IsImportant: true}
	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/announcements",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "advisors cannot publish", method: http.MethodPost, path: "/v1/announcements", body: marchallObj(t, na),
			token: getToken(t, advisor), wantCode: http.StatusForbidden,
		},
		{
			name: "content required", method: http.MethodPost, path: "/v1/announcements", token: getToken(t, secretary),
			body: marchallObj(t, announcement.NewAnnouncement{Title: "Hari Sukan"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "empty board", path: "/v1/announcements", token: getToken(t, advisor),
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
	}
	runHTTPTests(t, app, tests)

	rec := app.do(t, http.MethodPost, "/v1/announcements", getToken(t, secretary), na)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a announcement.Announcement
	unmarshal(t, rec, &a)
	assert.Equal(t, secretary.ID, a.AuthorID)
	assert.True(t, a.IsImportant)

	path := "/v1/announcements/" + a.ID
	edit := announcement.NewAnnouncement{Title: "Hari Sukan (ditunda)", Content: "Ahad, 8 pagi"}
	tests = []httpTest{
		{name: "advisors read", path: "/v1/announcements", token: getToken(t, advisor), wantCode: http.StatusOK, wantData: marchallList(t, a)},
		{name: "retrieve", path: path, token: getToken(t, advisor), wantCode: http.StatusOK, wantData: marchallObj(t, a)},
		{name: "other school", path: path, token: getToken(t, outsider), wantCode: http.StatusNotFound},
		{
			name: "advisors cannot edit", method: http.MethodPut, path: path, body: marchallObj(t, edit),
			token: getToken(t, advisor), wantCode: http.StatusForbidden,
		},
		{
			name: "advisors cannot delete", method: http.MethodDelete, path: path,
			token: getToken(t, advisor), wantCode: http.StatusForbidden,
		},
	}
	runHTTPTests(t, app, tests)

	rec = app.do(t, http.MethodPut, path, getToken(t, ap), edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got announcement.Announcement
	unmarshal(t, rec, &got)
	assert.Equal(t, edit.Title, got.Title)
	assert.Equal(t, a.Date, got.Date)
	assert.False(t, got.IsImportant)

	rec = app.do(t, http.MethodDelete, path, getToken(t, ap), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodGet, path, getToken(t, secretary), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
