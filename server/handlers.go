package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/petal-labs/anther/tool"
)

// handleHealth returns a simple liveness response.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleToolCall dispatches POST /tool/{name}. The JSON object body maps
// parameter names to values; an empty body means no arguments.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, tool.KindInvalidArguments, "request body exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, tool.KindInvalidArguments, err.Error())
		return
	}

	args := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, http.StatusBadRequest, tool.KindInvalidArguments, "request body must be a JSON object: "+err.Error())
			return
		}
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	resp := s.dispatcher.Handle(r.Context(), tool.Request{
		Tool:      name,
		Arguments: args,
		RequestID: requestID,
	})

	w.Header().Set("X-Request-Id", requestID)
	if !resp.OK() {
		writeToolError(w, resp.Err)
		return
	}
	writeResult(w, resp.Result)
}

// handleResourceRead serves GET /resource/{uri...}; resources take no body.
func (s *Server) handleResourceRead(w http.ResponseWriter, r *http.Request) {
	uri := r.PathValue("uri")

	res, err := s.registry.ResolveResource(uri)
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}

	value, err := res.Reader(r.Context())
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}
	writeResult(w, value)
}

// handlePromptRender serves POST /prompt/{name}: validate arguments against
// the prompt schema, render the template, return the text.
func (s *Server) handlePromptRender(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	prompt, err := s.registry.ResolvePrompt(name)
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}

	args := map[string]any{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, tool.KindInvalidArguments, "request body exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, tool.KindInvalidArguments, err.Error())
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, http.StatusBadRequest, tool.KindInvalidArguments, "request body must be a JSON object: "+err.Error())
			return
		}
	}

	validated, err := tool.ValidatePromptArguments(prompt, args)
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}

	text, err := prompt.Render(validated)
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}
	writeResult(w, text)
}

// catalogEntry is one tool in the GET /api/tools listing.
type catalogEntry struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Params      []tool.Param `json:"params"`
	Status      tool.Status  `json:"status"`
}

func (s *Server) catalogEntry(desc tool.Descriptor) catalogEntry {
	status, _ := s.registry.ToolStatus(desc.Name)
	params := desc.Params
	if params == nil {
		params = []tool.Param{}
	}
	return catalogEntry{
		Name:        desc.Name,
		Description: desc.Description,
		Params:      params,
		Status:      status,
	}
}

// handleListTools returns the name-sorted tool catalog.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	descs := s.registry.Descriptors()
	entries := make([]catalogEntry, 0, len(descs))
	for _, desc := range descs {
		entries = append(entries, s.catalogEntry(desc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": entries})
}

// handleGetTool returns a single catalog entry by name.
func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	desc, err := s.registry.Resolve(r.PathValue("name"))
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}
	writeJSON(w, http.StatusOK, s.catalogEntry(desc))
}

// handleToolHealth returns the last background probe result for a tool.
func (s *Server) handleToolHealth(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	desc, err := s.registry.Resolve(name)
	if err != nil {
		writeToolError(w, tool.AsError(err))
		return
	}
	if desc.Probe == nil {
		writeError(w, http.StatusNotFound, tool.KindNotFound, "tool "+name+" has no health probe")
		return
	}

	if s.scheduler != nil {
		if report, ok := s.scheduler.LastReport(name); ok {
			writeJSON(w, http.StatusOK, report)
			return
		}
	}

	status, _ := s.registry.ToolStatus(name)
	writeJSON(w, http.StatusOK, tool.HealthReport{Tool: name, Status: status})
}

// handleListInvocations returns recent invocation records, newest first.
func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, tool.KindNotFound, "invocation history is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, tool.KindInvalidArguments, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, tool.KindHandlerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invocations": records})
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
