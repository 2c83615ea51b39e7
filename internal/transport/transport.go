// Package transport is the JSON facade over the launcher core. Requests
// and responses are tagged unions; every service error maps to exactly
// one code from a closed set, so clients can switch on code without
// parsing messages.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/model"
)

// Core is the slice of the service the transport needs.
type Core interface {
	Search(query string, limit int) ([]model.SearchItem, error)
	Launch(id, path string) error
	Rebuild() (int, error)
	UpsertItem(item model.SearchItem) error
}

// Error codes, closed set.
const (
	CodeInvalidJSON    = "invalid_json"
	CodeInvalidRequest = "invalid_request"
	CodeItemNotFound   = "item_not_found"
	CodeLaunch         = "launch"
	CodeStore          = "store"
	CodeConfig         = "config"
	CodeProvider       = "provider"
)

// Request is the incoming tagged union: kind selects the payload shape.
type Request struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// SearchRequest is the payload for kind "Search".
type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

// LaunchRequest is the payload for kind "Launch".
type LaunchRequest struct {
	ID   *string `json:"id"`
	Path *string `json:"path"`
}

// SearchResult is the wire form of one result row.
type SearchResult struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Path     string `json:"path"`
}

// SearchResponse is the payload for a successful Search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// LaunchResponse is the payload for a successful Launch.
type LaunchResponse struct {
	Launched bool `json:"launched"`
}

// UpsertRequest is the payload for kind "Upsert".
type UpsertRequest struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Path     string `json:"path"`
}

// UpsertResponse is the payload for a successful Upsert.
type UpsertResponse struct {
	Upserted bool `json:"upserted"`
}

// RebuildResponse is the payload for a successful Rebuild.
type RebuildResponse struct {
	Indexed int `json:"indexed"`
}

// Body pairs a response kind with its payload.
type Body struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// ErrorBody carries a closed-set code plus a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the outgoing tagged union, discriminated by status.
type Response struct {
	Status   string     `json:"status"`
	Response *Body      `json:"response,omitempty"`
	Error    *ErrorBody `json:"error,omitempty"`
}

func okResponse(kind string, payload any) Response {
	return Response{Status: "ok", Response: &Body{Kind: kind, Payload: payload}}
}

func errResponse(code, message string) Response {
	return Response{Status: "err", Error: &ErrorBody{Code: code, Message: message}}
}

// HandleRequest dispatches one decoded request against the core.
func HandleRequest(core Core, req Request) Response {
	switch req.Kind {
	case "Search":
		var sr SearchRequest
		if err := json.Unmarshal(req.Payload, &sr); err != nil {
			return errResponse(CodeInvalidJSON, fmt.Sprintf("search payload: %v", err))
		}
		limit := 0
		if sr.Limit != nil {
			limit = *sr.Limit
		}
		items, err := core.Search(sr.Query, limit)
		if err != nil {
			return errorFor(err)
		}
		results := make([]SearchResult, 0, len(items))
		for _, it := range items {
			results = append(results, SearchResult{
				ID:       it.ID,
				Kind:     it.Kind,
				Title:    it.Title,
				Subtitle: it.Subtitle,
				Path:     it.Path,
			})
		}
		return okResponse("Search", SearchResponse{Results: results})
	case "Launch":
		var lr LaunchRequest
		if err := json.Unmarshal(req.Payload, &lr); err != nil {
			return errResponse(CodeInvalidJSON, fmt.Sprintf("launch payload: %v", err))
		}
		var id, path string
		if lr.ID != nil {
			id = *lr.ID
		}
		if lr.Path != nil {
			path = *lr.Path
		}
		if err := core.Launch(id, path); err != nil {
			return errorFor(err)
		}
		return okResponse("Launch", LaunchResponse{Launched: true})
	case "Rebuild":
		indexed, err := core.Rebuild()
		if err != nil {
			return errorFor(err)
		}
		return okResponse("Rebuild", RebuildResponse{Indexed: indexed})
	case "Upsert":
		var ur UpsertRequest
		if err := json.Unmarshal(req.Payload, &ur); err != nil {
			return errResponse(CodeInvalidJSON, fmt.Sprintf("upsert payload: %v", err))
		}
		if ur.ID == "" || ur.Title == "" {
			return errResponse(CodeInvalidRequest, "upsert needs id and title")
		}
		item := model.SearchItem{
			ID:       ur.ID,
			Kind:     ur.Kind,
			Title:    ur.Title,
			Subtitle: ur.Subtitle,
			Path:     ur.Path,
		}
		if err := core.UpsertItem(item); err != nil {
			return errorFor(err)
		}
		return okResponse("Upsert", UpsertResponse{Upserted: true})
	default:
		return errResponse(CodeInvalidRequest, fmt.Sprintf("unknown request kind %q", req.Kind))
	}
}

// HandleJSON decodes a raw payload, dispatches it, and encodes the
// response. It never returns malformed JSON.
func HandleJSON(core Core, payload []byte) []byte {
	var req Request
	var resp Response
	if err := json.Unmarshal(payload, &req); err != nil {
		resp = errResponse(CodeInvalidJSON, err.Error())
	} else {
		resp = HandleRequest(core, req)
	}
	encoded, err := json.Marshal(resp)
	if err != nil {
		// Only reachable if a payload type stops being marshalable.
		return []byte(`{"status":"err","error":{"code":"store","message":"response encoding failed"}}`)
	}
	return encoded
}

// errorFor classifies a service error into the closed code set.
func errorFor(err error) Response {
	code := CodeStore
	switch {
	case errors.Is(err, apperr.ErrInvalidRequest):
		code = CodeInvalidRequest
	case errors.Is(err, apperr.ErrItemNotFound):
		code = CodeItemNotFound
	case errors.Is(err, apperr.ErrLaunch):
		code = CodeLaunch
	case errors.Is(err, apperr.ErrConfig):
		code = CodeConfig
	case errors.Is(err, apperr.ErrProvider):
		code = CodeProvider
	case errors.Is(err, apperr.ErrInvalidJSON):
		code = CodeInvalidJSON
	}
	return errResponse(code, err.Error())
}
