package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBody = 16 << 20
	maxUploadFile = 10 << 20
)

type AttendanceHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	UploadFile(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListByDateRange(w http.ResponseWriter, r *http.Request)
	ListForDate(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
	GetEmployeeDaily(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Upload implements AttendanceHandler for the JSON payload produced by the
// sheet extractor.
func (h *attendanceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	var req attendance.UploadRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Attendance upload decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ProcessUpload(r.Context(), req)
	if err != nil {
		slog.Error("Attendance upload service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance data processed successfully", result)
}

// UploadFile implements AttendanceHandler for multipart sheet uploads.
func (h *attendanceHandlerImpl) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFile); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Attendance file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req := attendance.ImportFileRequest{
		FileName:   fileHeader.Filename,
		PeriodFrom: r.FormValue("from"),
		PeriodTo:   r.FormValue("to"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ImportFile(r.Context(), file, req)
	if err != nil {
		slog.Error("Attendance file import error", "error", err, "file", fileHeader.Filename)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance file imported successfully", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetAllAttendance(r.Context(), periodQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListByDateRange implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.attendanceService.GetByDateRange(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListForDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListForDate(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetAllForDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetSummary(r.Context(), r.URL.Query().Get("employeeId"), periodQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListByEmployee implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetEmployeeAttendance(r.Context(), chi.URLParam(r, "employeeId"), periodQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetEmployeeDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeDaily(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetEmployeeDaily(r.Context(), chi.URLParam(r, "employeeId"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}

// periodQuery returns the period filter when both bounds are given.
func periodQuery(r *http.Request) *attendance.Period {
	q := r.URL.Query()
	from, to := q.Get("periodFrom"), q.Get("periodTo")
	if from == "" || to == "" {
		return nil
	}
	return &attendance.Period{From: from, To: to}
}
