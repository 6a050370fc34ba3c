// Package api serves the object type CRUD operations over HTTP as JSON.
// Handlers may run concurrently; the Store serializes storage access.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/kbase/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes a types.Store over HTTP.
type Server struct {
	store  types.Store
	logger *zap.SugaredLogger
	mux    *http.ServeMux
}

// NewServer returns a Server with all routes registered. A nil logger
// discards output.
func NewServer(store types.Store, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{store: store, logger: logger, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/object-types", s.handleList)
	s.mux.HandleFunc("POST /api/object-types", s.handleCreate)
	s.mux.HandleFunc("PUT /api/object-types/{name}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /api/object-types/{name}", s.handleDelete)
	s.mux.HandleFunc("GET /api/data-types", s.handleDataTypes)
}

// ServeHTTP logs each request and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Infow("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

// handleList handles GET /api/object-types
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListObjectTypes(r.Context())
	if err != nil {
		s.storeError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreate handles POST /api/object-types
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ot, err := readObjectType(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateObjectType(r.Context(), ot)
	if err != nil {
		s.storeError(w, "create", err)
		return
	}
	if created == nil {
		writeError(w, http.StatusInternalServerError, "object type was not stored")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdate handles PUT /api/object-types/{name}
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ot, err := readObjectType(r, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.store.UpdateObjectType(r.Context(), ot)
	if err != nil {
		s.storeError(w, "update", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("object type %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDelete handles DELETE /api/object-types/{name}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	deleted, err := s.store.DeleteObjectType(r.Context(), types.NewObjectType(name))
	if err != nil {
		s.storeError(w, "delete", err)
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("object type %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// handleDataTypes handles GET /api/data-types
func (s *Server) handleDataTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.DataTypeNames())
}

// readObjectType decodes an object type document from the request body.
// When pathName is set the document name must match it or be empty.
func readObjectType(r *http.Request, pathName string) (*types.ObjectType, error) {
	var doc types.Document
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json body: %w", err)
	}
	if pathName != "" {
		if doc.Name == "" {
			doc.Name = pathName
		}
		if doc.Name != pathName {
			return nil, fmt.Errorf("body name %q does not match path name %q", doc.Name, pathName)
		}
	}
	if doc.IDParts == nil {
		for _, a := range doc.Attributes {
			if a.IsIDPart {
				doc.IDParts = append(doc.IDParts, a.Name)
			}
		}
	}
	return types.ObjectTypeFromDocument(doc)
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, types.ErrInvalidName) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Errorw("store operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed: %v", op, err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
