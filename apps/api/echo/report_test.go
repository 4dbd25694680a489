package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/kokulite/apps/api/echo"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/tests"
)

func Test_reportApi_workflow(t *testing.T) {
	app := setup(t)
	scouts := testutil.CreateUnit(t, app.store, "sch1", "Pengakap", unit.CategoryUniformed)
	advisor := testutil.CreateAdvisor(t, app.store, "sch1", "Cikgu Ahmad", "ahmad@smk.edu.my", scouts)
	secretary := testutil.CreateStaff(t, app.store, "sch1", "Puan Salmah", "salmah@smk.edu.my", user.RoleSecretary)
	ap := testutil.CreateStaff(t, app.store, "sch1", "Encik Rahman", "rahman@smk.edu.my", user.RoleAssistantPrincipal)
	outsider := testutil.CreateStaff(t, app.store, "sch2", "Puan Aminah", "aminah@smk2.edu.my", user.RoleSecretary)
	ali := testutil.CreateStudent(t, app.store, scouts, "Ali Bin Abu", "4 Merah")
	testutil.CreateStudent(t, app.store, scouts, "Siti Binti Ali", "5 Biru")

	advToken, secToken, apToken := getToken(t, advisor), getToken(t, secretary), getToken(t, ap)

	var att attendance.Record
	t.Run("record attendance", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/attendance", advToken, attendance.NewRecord{
			Date:              "2024-03-01",
			ActivityName:      "Kawad kaki",
			StudentIDsPresent: []string{ali.ID},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, &att)
		assert.Equal(t, 2, att.TotalStudents)
	})

	t.Run("pending attendance is queued for the advisor", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/reports/queue", advToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var q review.ReportQueue
		unmarshal(t, rec, &q)
		if assert.Len(t, q.Pending, 1) {
			assert.Equal(t, att.ID, q.Pending[0].ID)
		}
	})

	t.Run("only advisors write reports", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/reports", secToken, report.Draft{Title: "Laporan"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]interface{}
		unmarshal(t, rec, &body)
		assert.Equal(t, []interface{}{user.RoleAdvisor}, body["allowed_roles"])
	})

	var r report.Report
	transition := func(t *testing.T, token string, cmd report.Command, wantCode int) {
		t.Helper()
		rec := app.do(t, http.MethodPost, "/v1/reports/"+r.ID+"/transition", token, cmd)
		require.Equal(t, wantCode, rec.Code, rec.Body.String())
		if wantCode == http.StatusOK {
			unmarshal(t, rec, &r)
		}
	}

	t.Run("draft", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/reports", advToken, report.Draft{AttendanceID: att.ID, Title: "Kawad kaki mingguan"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, &r)
		assert.Equal(t, report.StatusDraft, r.Status)
		assert.Equal(t, att.Date, r.Date)

		rec = app.do(t, http.MethodPost, "/v1/reports", advToken, report.Draft{AttendanceID: att.ID, Title: "Again"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "one report per attendance record")
	})

	t.Run("submit needs content", func(t *testing.T) {
		transition(t, advToken, report.Command{Action: report.ActionSubmit}, http.StatusBadRequest)

		rec := app.do(t, http.MethodPut, "/v1/reports/"+r.ID, advToken, echoapi.UpdateReportRequest{
			Draft: report.Draft{
				Title:   "Kawad kaki mingguan",
				Content: "Latihan kawad untuk pertandingan daerah.",
			},
			ExpectedStatus: report.StatusDraft,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshal(t, rec, &r)
		assert.Equal(t, report.StatusDraft, r.Status)

		transition(t, advToken, report.Command{Action: report.ActionSubmit}, http.StatusOK)
		assert.Equal(t, report.StatusSubmitted, r.Status)
	})

	t.Run("secretary queue", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/reports/queue", secToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var q review.ReportQueue
		unmarshal(t, rec, &q)
		if assert.Len(t, q.Queue, 1) {
			assert.Equal(t, r.ID, q.Queue[0].ID)
		}
	})

	t.Run("reject", func(t *testing.T) {
		transition(t, secToken, report.Command{Action: report.ActionReject, Feedback: "  "}, http.StatusBadRequest)
		transition(t, getToken(t, outsider), report.Command{Action: report.ActionReject, Feedback: "x"}, http.StatusForbidden)
		transition(t, apToken, report.Command{Action: report.ActionApprove}, http.StatusForbidden)

		transition(t, secToken, report.Command{Action: report.ActionReject, Feedback: "Sila tambah gambar."}, http.StatusOK)
		assert.Equal(t, report.StatusNeedsCorrection, r.Status)
		assert.Equal(t, "Sila tambah gambar.", r.Feedback)
	})

	t.Run("stale token", func(t *testing.T) {
		transition(t, advToken, report.Command{Action: report.ActionResubmit, ExpectedStatus: report.StatusSubmitted}, http.StatusConflict)
	})

	t.Run("resubmit, approve and reopen", func(t *testing.T) {
		transition(t, advToken, report.Command{Action: report.ActionResubmit, ExpectedStatus: report.StatusNeedsCorrection}, http.StatusOK)
		assert.Equal(t, report.StatusSubmitted, r.Status)
		assert.Empty(t, r.Feedback)

		transition(t, secToken, report.Command{Action: report.ActionApprove}, http.StatusOK)
		assert.Equal(t, report.StatusVerified, r.Status)

		transition(t, apToken, report.Command{Action: report.ActionReopen, Feedback: "Semak tarikh."}, http.StatusOK)
		assert.Equal(t, report.StatusNeedsCorrection, r.Status)
		assert.Equal(t, report.ReopenPrefix+"Semak tarikh.", r.Feedback)
	})

	t.Run("author is notified", func(t *testing.T) {
		msgs := app.mailSvc.SentMessages()
		if assert.Len(t, msgs, 3) {
			for _, msg := range msgs {
				assert.Equal(t, advisor.Email, msg.To[0].Address)
			}
		}
	})

	tests := []httpTest{
		{name: "unknown report", path: "/v1/reports/nope", token: secToken, wantCode: http.StatusNotFound},
		{name: "other school", path: "/v1/reports/" + r.ID, token: getToken(t, outsider), wantCode: http.StatusNotFound},
		{name: "Auth required", path: "/v1/reports", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "filter by status", path: "/v1/reports?status=" + report.StatusVerified, token: apToken,
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
	}
	runHTTPTests(t, app, tests)
}
