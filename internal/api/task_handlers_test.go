package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard/internal/db/models"
)

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func expectAudit(mock sqlmock.Sqlmock, actorID int64, action, resource string) {
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(i64(actorID), action, resource).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(99, time.Now()))
}

func TestListTasks_ScopedToOrganization(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, carol)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE u.organization_id = \$1`).
		WithArgs(i64(1)).
		WillReturnRows(taskRows(5, "Buy milk", bob.ID, 1))

	w := doJSON(router, http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Buy milk"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTasks_OwnerSeesEverything(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, alice)

	// No organization argument: the owner's filter is unrestricted.
	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id ORDER BY t.created_at DESC`).
		WillReturnRows(taskRows(5, "Cross-org task", dave.ID, 2))

	w := doJSON(router, http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cross-org task")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTask_OutOfScopeIs404(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, dave)

	// The scoped query returns nothing whether the task is absent or owned by
	// another organization; both look identical to the caller.
	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE t.id = \$1 AND u.organization_id = \$2`).
		WithArgs(int64(5), i64(2)).
		WillReturnRows(sqlmock.NewRows(taskCols))

	w := doJSON(router, http.MethodGet, "/tasks/5", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTask_BadID(t *testing.T) {
	db, _ := newTestDB(t)
	router := newHandlerRouter(db, carol)

	w := doJSON(router, http.MethodGet, "/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_DefaultsAndAudit(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Buy milk", "", models.StatusTodo, models.PriorityMedium, models.DefaultCategory, nil, bob.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, time.Now(), time.Now()))
	expectAudit(mock, bob.ID, models.ActionCreateTask, "Task ID: 7")

	w := doJSON(router, http.MethodPost, "/tasks", `{"title":"Buy milk"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"TODO"`)
	assert.Contains(t, w.Body.String(), `"priority":"MEDIUM"`)
	assert.Contains(t, w.Body.String(), `"category":"WORK"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_ViewerForbidden(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, carol)

	w := doJSON(router, http.MethodPost, "/tasks", `{"title":"nope"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no store access on a role denial")
}

func TestCreateTask_MissingTitle(t *testing.T) {
	db, _ := newTestDB(t)
	router := newHandlerRouter(db, bob)

	w := doJSON(router, http.MethodPost, "/tasks", `{"description":"untitled"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	db, _ := newTestDB(t)
	router := newHandlerRouter(db, bob)

	w := doJSON(router, http.MethodPost, "/tasks", `{"title":"x","status":"SOMEDAY"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_AdminOwnTask(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE t.id = \$1 AND u.organization_id = \$2`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Buy milk", bob.ID, 1))
	mock.ExpectExec(`UPDATE tasks SET status = \$2, updated_at = now\(\) WHERE id = \$1`).
		WithArgs(int64(5), models.StatusDone).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE t.id = \$1 AND u.organization_id = \$2`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(5, "Buy milk", "", "DONE", "MEDIUM", "WORK", nil, bob.ID, time.Now(), time.Now(), 1))
	expectAudit(mock, bob.ID, models.ActionUpdateTask, "Task ID: 5")

	w := doJSON(router, http.MethodPatch, "/tasks/5", `{"status":"DONE"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"DONE"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An ADMIN can see a colleague's task but cannot modify it; visibility and
// mutation rights are deliberately different.
func TestUpdateTask_AdminColleagueTaskForbidden(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Alice's task", alice.ID, 1))

	w := doJSON(router, http.MethodPatch, "/tasks/5", `{"status":"DONE"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no write after an ownership denial")
}

func TestUpdateTask_OwnerMutatesAnyTask(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, alice)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE t.id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(taskRows(9, "Dave's task", dave.ID, 2))
	mock.ExpectExec(`UPDATE tasks SET title = \$2, updated_at = now\(\) WHERE id = \$1`).
		WithArgs(int64(9), "Renamed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u ON u.id = t.owner_id WHERE t.id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(taskRows(9, "Renamed", dave.ID, 2))
	expectAudit(mock, alice.ID, models.ActionUpdateTask, "Task ID: 9")

	w := doJSON(router, http.MethodPatch, "/tasks/9", `{"title":"Renamed"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_VanishedBetweenCheckAndWrite(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Buy milk", bob.ID, 1))
	mock.ExpectExec(`UPDATE tasks SET`).
		WithArgs(int64(5), models.StatusDone).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(router, http.MethodPatch, "/tasks/5", `{"status":"DONE"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_AdminOwnTask(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Buy milk", bob.ID, 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAudit(mock, bob.ID, models.ActionDeleteTask, "Task ID: 5")

	w := doJSON(router, http.MethodDelete, "/tasks/5", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_AdminColleagueTaskForbidden(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Alice's task", alice.ID, 1))

	w := doJSON(router, http.MethodDelete, "/tasks/5", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_ViewerForbidden(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, carol)

	w := doJSON(router, http.MethodDelete, "/tasks/5", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed audit append after a successful delete must not turn the response
// into an error; the mutation has already committed.
func TestDeleteTask_AuditFailureDoesNotRollBack(t *testing.T) {
	db, mock := newTestDB(t)
	router := newHandlerRouter(db, bob)

	mock.ExpectQuery(`SELECT .* FROM tasks t JOIN users u`).
		WithArgs(int64(5), i64(1)).
		WillReturnRows(taskRows(5, "Buy milk", bob.ID, 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO audit_logs").
		WithArgs(i64(bob.ID), models.ActionDeleteTask, "Task ID: 5").
		WillReturnError(errStore)

	w := doJSON(router, http.MethodDelete, "/tasks/5", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
