package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/report"
)

// maxUploadBytes caps quiz file uploads at 10 MB, as the original service did.
const maxUploadBytes = 10 << 20

// Handler exposes the quiz use cases over REST.
type Handler struct {
	service *app.Service
	auth    *Authenticator
}

func NewHandler(service *app.Service, auth *Authenticator) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes wires all endpoints onto a mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("POST /api/auth/sync", h.auth.Require(h.syncUser))

	mux.HandleFunc("GET /api/quizzes", h.auth.Require(h.listQuizzes))
	mux.HandleFunc("POST /api/quizzes", h.auth.RequireAdmin(h.createQuiz))
	mux.HandleFunc("POST /api/quizzes/upload", h.auth.RequireAdmin(h.uploadQuiz))
	mux.HandleFunc("GET /api/quizzes/{id}", h.auth.Require(h.getQuiz))
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.auth.RequireAdmin(h.deleteQuiz))
	mux.HandleFunc("POST /api/quizzes/{id}/submit", h.auth.Require(h.submitQuiz))

	mux.HandleFunc("GET /api/users", h.auth.RequireAdmin(h.listUsers))
	mux.HandleFunc("GET /api/users/history", h.auth.Require(h.history))
	mux.HandleFunc("GET /api/users/stats", h.auth.Require(h.stats))
	mux.HandleFunc("PUT /api/users/{id}/role", h.auth.RequireAdmin(h.updateRole))

	mux.HandleFunc("GET /api/leaderboard/global", h.auth.Require(h.globalLeaderboard))
	mux.HandleFunc("GET /api/leaderboard/{quizId}", h.auth.Require(h.quizLeaderboard))

	mux.HandleFunc("GET /api/submissions", h.auth.RequireAdmin(h.listSubmissions))
	mux.HandleFunc("GET /api/submissions/download", h.auth.RequireAdmin(h.downloadReport))
	mux.HandleFunc("GET /api/submissions/view", h.auth.RequireAdmin(h.viewReport))

	ws := NewWSHandler(h.service)
	mux.HandleFunc("GET /ws/leaderboard", h.auth.Require(ws.ServeWS))

	return mux
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) syncUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	user, err := h.service.SyncUser(r.Context(), identity.Email, identity.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(quizzes),
		"quizzes": quizzes,
	})
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	quiz, err := h.service.GetQuiz(r.Context(), r.PathValue("id"), identity.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quiz": quiz})
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeError(w, domain.Validationf("invalid quiz payload: %v", err))
		return
	}
	created, err := h.service.CreateQuiz(r.Context(), quiz, identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Quiz created successfully",
		"quiz":    created,
	})
}

func (h *Handler) uploadQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("quizFile")
	if err != nil {
		writeError(w, domain.Validationf("no file uploaded"))
		return
	}
	defer file.Close()

	if !jsonUploadName.MatchString(header.Filename) {
		writeError(w, domain.Validationf("only JSON quiz files are supported"))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, domain.Validationf("could not read uploaded file"))
		return
	}
	created, err := h.service.CreateQuizFromJSON(r.Context(), data, identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Quiz created successfully",
		"quiz": map[string]any{
			"id":             created.ID,
			"title":          created.Title,
			"description":    created.Description,
			"questionsCount": len(created.Questions),
		},
	})
}

var jsonUploadName = regexp.MustCompile(`(?i)\.json$`)

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Quiz deleted successfully",
	})
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	var body struct {
		Answers []domain.SubmittedAnswer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.Validationf("invalid submission payload: %v", err))
		return
	}
	result, _, err := h.service.Submit(r.Context(), identity.UserID, r.PathValue("id"), body.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	history, err := h.service.History(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	stats, err := h.service.Stats(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.Validationf("invalid role payload"))
		return
	}
	user, err := h.service.UpdateRole(r.Context(), r.PathValue("id"), body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User role updated successfully",
		"user":    user,
	})
}

func (h *Handler) globalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.RankGlobal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"totalUsers":  len(entries),
		"leaderboard": entries,
	})
}

func (h *Handler) quizLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.RankByQuiz(r.Context(), r.PathValue("quizId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"quiz": map[string]any{
			"id":             board.QuizID,
			"title":          board.QuizTitle,
			"category":       board.Category,
			"totalQuestions": board.TotalQuestions,
		},
		"totalAttempts": len(board.Entries),
		"leaderboard":   board.Entries,
	})
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.service.ListSubmissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(submissions),
		"submissions": submissions,
	})
}

// viewReport renders the PDF fully in memory before writing anything, so a
// rendering failure still yields a structured JSON error.
func (h *Handler) viewReport(w http.ResponseWriter, r *http.Request) {
	bundle, filename, err := h.loadBundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := report.RenderBuffer(bundle)
	if err != nil {
		writeError(w, &domain.Error{Kind: domain.KindUpstream, Message: "report generation failed"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	_, _ = w.Write(pdf)
}

// downloadReport streams the PDF. Once headers are committed a mid-stream
// failure can only be logged; the shared content routine keeps the output
// identical to the buffered path.
func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request) {
	bundle, filename, err := h.loadBundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.Render(w, bundle); err != nil {
		log.Printf("report stream failed after headers: %v", err)
	}
}

func (h *Handler) loadBundle(r *http.Request) (domain.SubmissionBundle, string, error) {
	userID, attemptID, err := app.ParseSubmissionHandle(r.URL.Query().Get("file"))
	if err != nil {
		return domain.SubmissionBundle{}, "", err
	}
	bundle, err := h.service.BuildSubmissionBundle(r.Context(), userID, attemptID)
	if err != nil {
		return domain.SubmissionBundle{}, "", err
	}
	name := safeFilename.ReplaceAllString(bundle.User.Name, "_")
	if name == "" {
		name = "User"
	}
	return bundle, name + "-Report.pdf", nil
}

var safeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds onto HTTP statuses. Unknown errors are
// logged and surfaced as a generic 500 so nothing internal leaks.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Server error"

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
		switch domainErr.Kind {
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindValidation:
			status = http.StatusBadRequest
		case domain.KindUnauthorized:
			status = http.StatusForbidden
		case domain.KindUpstream:
			status = http.StatusInternalServerError
			log.Printf("upstream error: %v", err)
		}
	} else {
		log.Printf("unhandled error: %v", err)
	}
	writeJSON(w, status, errorBody{Message: message})
}
