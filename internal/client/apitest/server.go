// Package apitest provides an in-process fake of the banking GraphQL API for
// tests.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/paging"
)

// Handler answers one operation. The returned value is encoded under
// data.<operation>. A *gqlx.Error is sent as an error envelope, any other
// error as a 500.
type Handler func(vars map[string]any) (any, error)

// Call is one recorded request.
type Call struct {
	Operation string
	Variables map[string]any
	Auth      string
}

// Server is a fake API. Unknown operations answer NOT_FOUND.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New starts a server closed at test cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{handlers: make(map[string]Handler)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers (or replaces) the handler of op.
func (s *Server) Handle(op string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = h
}

// Calls returns the recorded calls of op, or every call when op is empty.
func (s *Server) Calls(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if op == "" || c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

// Count is len(Calls(op)).
func (s *Server) Count(op string) int { return len(s.Calls(op)) }

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != gqlx.Endpoint {
		http.NotFound(w, r)
		return
	}

	var body struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []errorBody{{Message: "invalid request body", Code: gqlx.CodeBadUserInput}},
		})
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Operation: body.OperationName,
		Variables: body.Variables,
		Auth:      strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
	})
	h, ok := s.handlers[body.OperationName]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []errorBody{{Message: "unknown operation " + body.OperationName, Code: gqlx.CodeNotFound}},
		})
		return
	}

	data, err := h(body.Variables)
	if err != nil {
		var gqlErr *gqlx.Error
		if errors.As(err, &gqlErr) {
			writeJSON(w, http.StatusOK, map[string]any{
				"errors": []errorBody{{Message: gqlErr.Message, Code: gqlErr.Code}},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"errors": []errorBody{{Message: err.Error(), Code: gqlx.CodeInternal}},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{body.OperationName: data}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail builds a server reported error for a Handler.
func Fail(code, message string) error {
	return &gqlx.Error{Code: code, Message: message}
}

// Paginate serves all as a connection using "after" cursors of the form
// c<offset>. The page size comes from the "first" variable.
func Paginate[T any](all []T, vars map[string]any) gqlx.Connection[T] {
	first := len(all)
	if f, ok := vars["first"].(float64); ok && f > 0 {
		first = int(f)
	}

	start := 0
	if after, ok := vars["after"].(string); ok {
		start, _ = strconv.Atoi(strings.TrimPrefix(after, "c"))
	}
	start = min(start, len(all))
	end := min(start+first, len(all))

	nodes := make([]T, end-start)
	copy(nodes, all[start:end])

	return gqlx.Connection[T]{
		Nodes: nodes,
		PageInfo: paging.PageInfo{
			HasNextPage:     end < len(all),
			HasPreviousPage: start > 0,
			StartCursor:     "c" + strconv.Itoa(start),
			EndCursor:       "c" + strconv.Itoa(end),
		},
		TotalCount: len(all),
	}
}

// String reads a string variable, also from a nested "input" object.
func String(vars map[string]any, name string) string {
	if v, ok := vars[name].(string); ok {
		return v
	}
	if in, ok := vars["input"].(map[string]any); ok {
		v, _ := in[name].(string)
		return v
	}
	return ""
}

// Int reads a numeric variable, also from a nested "input" object.
func Int(vars map[string]any, name string) int64 {
	if v, ok := vars[name].(float64); ok {
		return int64(v)
	}
	if in, ok := vars["input"].(map[string]any); ok {
		v, _ := in[name].(float64)
		return int64(v)
	}
	return 0
}
