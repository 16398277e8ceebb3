package api

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/nuphysics/oscprob/internal/version"
)

type Server struct {
	store   *OscillogramStore
	service *CalculatorService
}

func NewServer(store *OscillogramStore, service *CalculatorService) *Server {
	if store == nil {
		store = NewOscillogramStore()
	}
	return &Server{
		store:   store,
		service: service,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/oscillograms", s.handleCreateOscillogram)
	e.GET("/v1/oscillograms", s.handleListOscillograms)
	e.GET("/v1/oscillograms/:id", s.handleGetOscillogram)
	e.DELETE("/v1/oscillograms/:id", s.handleDeleteOscillogram)
	e.GET("/v1/version", s.handleVersion)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleCreateOscillogram(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "calculator service not configured", "", "")
	}
	req, err := decodeJSON[OscillogramRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	resp, err := s.service.Compute(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return writeBadRequest(c, err.Error())
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	s.store.Save(resp)
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleListOscillograms(c *echo.Context) error {
	ids := s.store.List()
	data := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{
			"id":     id,
			"object": "oscillogram",
		})
	}
	return writeJSON(c, http.StatusOK, map[string]any{
		"object": "list",
		"data":   data,
	})
}

func (s *Server) handleGetOscillogram(c *echo.Context) error {
	id := c.Param("id")
	resp, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "oscillogram "+id+" not found")
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleDeleteOscillogram(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "oscillogram "+id+" not found")
	}
	return writeJSON(c, http.StatusOK, map[string]any{
		"id":      id,
		"object":  "oscillogram.deleted",
		"deleted": true,
	})
}

func (s *Server) handleVersion(c *echo.Context) error {
	info := version.Resolve()
	return writeJSON(c, http.StatusOK, map[string]any{
		"version":    info.Version,
		"commit":     info.Commit,
		"build_time": info.BuildTime,
	})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeJSON marshals with goccy/go-json; probability grids dominate response
// sizes, so the faster encoder matters here.
func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
