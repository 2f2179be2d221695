package adapthttp

import (
	"errors"
	"net/http"

	"tasklist/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{}
	if p := principalFromContext(r); p != nil {
		data.User = p.Username
	}
	s.render(w, "index", data)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r)

	tasks, err := s.tasks.List(r.Context(), p.UserID)
	if err != nil {
		s.log.Error("list tasks", zap.String("user_id", p.UserID), zap.Error(err))
		writeText(w, "Error loading home page.")
		return
	}

	user := p.Username
	if user == "" {
		user = "Guest"
	}
	s.render(w, "home", pageData{User: user, Tasks: tasks})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r)

	if _, err := s.tasks.Create(r.Context(), p.UserID, r.PostFormValue("title")); err != nil {
		s.log.Error("create task", zap.String("user_id", p.UserID), zap.Error(err))
		writeText(w, "Something went wrong.")
		return
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}

// handleEdit only shows tasks the caller owns; any other id goes back home.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r)
	id := chi.URLParam(r, "id")

	task, err := s.tasks.GetOwned(r.Context(), id, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	if err != nil {
		s.log.Error("get task", zap.String("task_id", id), zap.Error(err))
		writeText(w, "Something went wrong.")
		return
	}
	s.render(w, "edit", pageData{User: p.Username, Task: task})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r)
	id := chi.URLParam(r, "id")

	matched, err := s.tasks.Update(r.Context(), id, p.UserID, r.PostFormValue("title"))
	if err != nil {
		s.log.Error("update task", zap.String("task_id", id), zap.Error(err))
		writeText(w, "Something went wrong.")
		return
	}
	if !matched {
		s.log.Debug("update matched no task", zap.String("task_id", id), zap.String("user_id", p.UserID))
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r)
	id := chi.URLParam(r, "id")

	matched, err := s.tasks.Delete(r.Context(), id, p.UserID)
	if err != nil {
		s.log.Error("delete task", zap.String("task_id", id), zap.Error(err))
		writeText(w, "Something went wrong.")
		return
	}
	if !matched {
		s.log.Debug("delete matched no task", zap.String("task_id", id), zap.String("user_id", p.UserID))
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}
