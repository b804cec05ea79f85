package task

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdesk/taskdesk/pkg/cerr"
)

// Server exposes the task service over HTTP. Handlers hand their result to
// the cerr response receiver; the surrounding middleware writes the JSON body
// and maps typed failures to status codes.
type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/tasks", s.handleCreate)
	r.Get("/tasks", s.handleList)
	r.Get("/tasks/{id}", s.handleGet)
	r.Patch("/tasks/{id}", s.handleUpdate)
	r.Delete("/tasks/{id}", s.handleDelete)
	r.Post("/tasks/{id}/status", s.handleChangeStatus)
}

type listResponse struct {
	Count int     `json:"count"`
	Data  []*Task `json:"data"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.service.Create(ctx, req)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, t)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := s.service.List(ctx, r.URL.Query().Get("status"), r.URL.Query().Get("search"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, listResponse{Count: len(tasks), Data: tasks})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.service.UpdatePatch(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.service.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	t, err := s.service.ChangeStatus(ctx, chi.URLParam(r, "id"), req.Status, req.Force)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}
