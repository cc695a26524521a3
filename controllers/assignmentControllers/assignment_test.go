package assignmentController_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	assignmentController "institute/controllers/assignmentControllers"
	"institute/database"
	"institute/logger"
	"institute/models"
	"institute/routers/assignmentRoutes"
	"institute/services/deeplink"
	"institute/services/dispatcher"
	"institute/services/submission"
	"institute/testutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app    *fiber.App
	store  *database.Store
	sender *testutils.FakeSender
	auth   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  testutils.NewStore(t),
		sender: testutils.NewFakeSender(),
		auth:   testutils.AdminToken(t),
	}
	links := deeplink.NewBuilder("https://admin.example.com", "", false)
	disp := dispatcher.New(h.store, h.sender, links, dispatcher.Options{Workers: 4, SendTimeout: time.Second}, logger.Nop())
	subs := submission.New(h.store, testutils.NewFakeObjectStore(), h.sender, links, submission.Options{SendTimeout: time.Second}, logger.Nop())

	h.app = fiber.New()
	assignmentRoutes.SetupAssignmentRoutes(h.app, &assignmentController.Handler{
		Dispatcher:     disp,
		Submissions:    subs,
		MaxUploadBytes: 1 << 20,
	})
	return h
}

type created struct {
	TaskID      uint                   `json:"task_id"`
	AccessToken string                 `json:"access_token"`
	Summary     models.DeliverySummary `json:"summary"`
}

func (h *harness) create(t *testing.T, batch string) created {
	t.Helper()
	var out created
	status, env := testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/admin/assignment/create", h.auth, map[string]string{
		"batch": batch, "course": "Go", "title": "Essay", "description": "Write it", "due_date": "2030-01-15",
	}), &out)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	return out
}

func TestCreateAssignmentReportsDeliveries(t *testing.T) {
	h := newHarness(t)
	testutils.SeedStudent(t, h.store, "One", "one@example.com", "B2")
	testutils.SeedStudent(t, h.store, "Two", "two@example.com", "B2")
	testutils.SeedStudent(t, h.store, "Three", "three@example.com", "B2")
	h.sender.FailFor["two@example.com"] = true

	out := h.create(t, "B2")
	assert.NotZero(t, out.TaskID)
	assert.Len(t, out.AccessToken, 48)
	assert.Equal(t, models.DeliverySummary{Total: 3, Sent: 2, Failed: 1}, out.Summary)

	var receipts struct {
		Summary  models.DeliverySummary   `json:"summary"`
		Receipts []models.DeliveryReceipt `json:"receipts"`
	}
	status, _ := testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodGet,
		fmt.Sprintf("/admin/assignment/%d/receipts", out.TaskID), h.auth, nil), &receipts)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, receipts.Receipts, 3)
	assert.Equal(t, 1, receipts.Summary.Failed)
}

func TestCreateAssignmentValidation(t *testing.T) {
	h := newHarness(t)

	status, _ := testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/admin/assignment/create", "", map[string]string{
		"batch": "B1", "course": "Go", "title": "T", "due_date": "2030-01-15",
	}), nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	var fields map[string]string
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/admin/assignment/create", h.auth, map[string]string{
		"batch": "B1", "course": " ", "due_date": "15/01/2030",
	}), &fields)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, fields, "course")
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "due_date")

	fields = nil
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/admin/assignment/create", h.auth, map[string]string{
		"batch": "B1", "course": "Go", "title": "Essay\r\nBcc: victim@evil.test", "due_date": "2030-01-15",
	}), &fields)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "title must be a single line", fields["title"])
	assert.Empty(t, h.sender.Messages())
}

func TestSubmissionFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	student := testutils.SeedStudent(t, h.store, "Ravi", "ravi@example.com", "B5")
	task := h.create(t, "B5")
	link := fmt.Sprintf("/assignment/%s/%d", task.AccessToken, student.ID)

	var view struct {
		Title string                 `json:"title"`
		State models.SubmissionState `json:"state"`
	}
	status, _ := testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodGet, link, "", nil), &view)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Essay", view.Title)
	assert.Equal(t, models.StateAssigned, view.State)

	var submitted struct {
		FileURL string `json:"file_url"`
	}
	status, _ = testutils.Do(t, h.app, testutils.FileRequest(t, http.MethodPost, link+"/submit", "", "essay.pdf", []byte("%PDF")), &submitted)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, submitted.FileURL, "essay.pdf")

	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodGet, link, "", nil), &view)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.StateSubmitted, view.State)

	review := fmt.Sprintf("/admin/assignment/%d/student/%d", task.TaskID, student.ID)
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, review+"/remark", h.auth, map[string]string{"remark": "cite sources"}), nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, review+"/complete", h.auth, nil), nil)
	assert.Equal(t, fiber.StatusOK, status)

	var errData map[string]string
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, review+"/remark", h.auth, map[string]string{"remark": "late"}), &errData)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errData["code"])

	status, _ = testutils.Do(t, h.app, testutils.FileRequest(t, http.MethodPost, link+"/submit", "", "late.pdf", []byte("%PDF")), &errData)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errData["code"])

	var listing struct {
		Total int `json:"total"`
	}
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodGet,
		fmt.Sprintf("/admin/assignment/%d/submissions", task.TaskID), h.auth, nil), &listing)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, listing.Total)
}

func TestSubmitErrors(t *testing.T) {
	h := newHarness(t)

	var errData map[string]string
	status, _ := testutils.Do(t, h.app, testutils.FileRequest(t, http.MethodPost, "/assignment/unknown/3/submit", "", "a.pdf", []byte("x")), &errData)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "INVALID_TOKEN", errData["code"])

	status, _ = testutils.Do(t, h.app, testutils.FileRequest(t, http.MethodPost, "/assignment/unknown/abc/submit", "", "a.pdf", []byte("x")), &errData)
	assert.Equal(t, fiber.StatusNotFound, status)

	require.NoError(t, h.store.InsertTask(context.Background(), &models.Task{Batch: "B1", Course: "Go", Title: "T", AccessToken: "tok"}))
	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/assignment/tok/3/submit", "", nil), nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = testutils.Do(t, h.app, testutils.JSONRequest(t, http.MethodPost, "/admin/assignment/1/student/9/complete", h.auth, nil), &errData)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SUBMISSION_NOT_FOUND", errData["code"])
}
