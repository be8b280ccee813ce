package application

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/jobfinder/jobfinder-api/internal/authoriser"
	"github.com/jobfinder/jobfinder-api/internal/config"
	"github.com/jobfinder/jobfinder-api/internal/middleware"
	"github.com/jobfinder/jobfinder-api/internal/server"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func testServer(t *testing.T) (server.Server, sqlmock.Sqlmock, *Repository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svr := server.NewServer(config.Config{JwtSigningKey: testKey}, db, mux.NewRouter())
	return svr, mock, NewRepository(db)
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	claims := middleware.UserJWT{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return ss
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["message"]
}

func TestApplyForJobHandlerSecondApplicationConflicts(t *testing.T) {
	svr, mock, repo := testServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posted_by FROM job WHERE id = $1`)).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"posted_by"}).AddRow("employer-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM application WHERE job_id = $1 AND applicant_id = $2`)).
		WithArgs("job-1", "seeker-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	body := bytes.NewBufferString(`{"job_id": "job-1", "resume": "https://cv.example/me.pdf"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/applications", body)
	r.Header.Set("Authorization", "Bearer "+bearerToken(t, "seeker-1", authoriser.RoleJobSeeker))
	w := httptest.NewRecorder()
	ApplyForJobHandler(svr, repo).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you have already applied for this job", decodeMessage(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent submission can slip past the pre-check, the unique index
// violation must map to the same conflict response.
func TestApplyForJobHandlerConflictsOnUniqueViolation(t *testing.T) {
	svr, mock, repo := testServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posted_by FROM job WHERE id = $1`)).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"posted_by"}).AddRow("employer-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM application WHERE job_id = $1 AND applicant_id = $2`)).
		WithArgs("job-1", "seeker-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO application").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	body := bytes.NewBufferString(`{"job_id": "job-1", "resume": "https://cv.example/me.pdf"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/applications", body)
	r.Header.Set("Authorization", "Bearer "+bearerToken(t, "seeker-1", authoriser.RoleJobSeeker))
	w := httptest.NewRecorder()
	ApplyForJobHandler(svr, repo).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you have already applied for this job", decodeMessage(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyForJobHandlerMissingJobIs404(t *testing.T) {
	svr, mock, repo := testServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posted_by FROM job WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	body := bytes.NewBufferString(`{"job_id": "missing", "resume": "https://cv.example/me.pdf"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/applications", body)
	r.Header.Set("Authorization", "Bearer "+bearerToken(t, "seeker-1", authoriser.RoleJobSeeker))
	w := httptest.NewRecorder()
	ApplyForJobHandler(svr, repo).ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job not found", decodeMessage(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Only the parent job's owner or an admin may update an application; the mock
// expects no UPDATE statement, so any write after the 403 would fail the test.
func TestUpdateApplicationHandlerForbiddenLeavesStateUnchanged(t *testing.T) {
	svr, mock, repo := testServer(t)
	appliedAt := time.Now().UTC()
	mock.ExpectQuery("FROM application a JOIN job j").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "applicant_id", "resume", "cover_letter", "status", "notes", "applied_at", "posted_by"}).
			AddRow("app-1", "job-1", "seeker-1", "cv", "", StatusPending, "", appliedAt, "employer-1"))

	body := bytes.NewBufferString(`{"status": "accepted"}`)
	r := httptest.NewRequest(http.MethodPut, "/api/applications/app-1", body)
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	r.Header.Set("Authorization", "Bearer "+bearerToken(t, "intruder-1", authoriser.RoleEmployer))
	w := httptest.NewRecorder()
	UpdateApplicationHandler(svr, repo).ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Withdrawal is owned by the applicant, not the job owner.
func TestDeleteApplicationHandlerForbiddenLeavesStateUnchanged(t *testing.T) {
	svr, mock, repo := testServer(t)
	appliedAt := time.Now().UTC()
	mock.ExpectQuery("FROM application a JOIN job j").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "applicant_id", "resume", "cover_letter", "status", "notes", "applied_at", "posted_by"}).
			AddRow("app-1", "job-1", "seeker-1", "cv", "", StatusPending, "", appliedAt, "employer-1"))

	r := httptest.NewRequest(http.MethodDelete, "/api/applications/app-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	r.Header.Set("Authorization", "Bearer "+bearerToken(t, "employer-1", authoriser.RoleEmployer))
	w := httptest.NewRecorder()
	DeleteApplicationHandler(svr, repo).ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
