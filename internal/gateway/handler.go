package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillworks/quill-gateway/internal/auth"
	"github.com/quillworks/quill-gateway/internal/facade"
	"github.com/quillworks/quill-gateway/internal/httputil"
	"github.com/quillworks/quill-gateway/internal/policy"
	"github.com/quillworks/quill-gateway/internal/types"
)

// maxBodyBytes caps the request body; writing-assistant payloads are
// text, not documents.
const maxBodyBytes = 1 << 20

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	processor facade.Processor
	policy    *policy.Evaluator
	chain     func() (primary, fallback string)
}

// NewHandler builds the HTTP surface. chain reports the active
// provider pair for introspection and may be nil.
func NewHandler(processor facade.Processor, policyEval *policy.Evaluator, chain func() (string, string)) *Handler {
	return &Handler{
		processor: processor,
		policy:    policyEval,
		chain:     chain,
	}
}

// processRequest is the POST /v1/process body.
type processRequest struct {
	Text      string `json:"text"`
	Operation string `json:"operation"`
	Style     string `json:"style,omitempty"`
	Language  string `json:"language,omitempty"`
}

// Process handles POST /v1/process
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var in processRequest
	if err := json.Unmarshal(body, &in); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}

	op, ok := types.ParseOperation(in.Operation)
	if !ok {
		httputil.WriteBadRequestError(w, reqID, "unknown operation: "+in.Operation)
		return
	}
	var style types.Style
	if in.Style != "" {
		if style, ok = types.ParseStyle(in.Style); !ok {
			httputil.WriteBadRequestError(w, reqID, "unknown style: "+in.Style)
			return
		}
	}

	req := &types.Request{
		Text:      in.Text,
		Operation: op,
		Style:     style,
		Language:  in.Language,
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequestError(w, reqID, err.Error())
		return
	}

	// Per-key operation allowlist
	if !allowedOperation(authInfo, string(op)) {
		httputil.WritePolicyDeniedError(w, reqID, "API key is not permitted to run "+string(op))
		return
	}

	// Rego policy gate
	if h.policy != nil && h.policy.Enabled() {
		now := time.Now().UTC()
		allowed, reason, err := h.policy.Evaluate(r.Context(), policy.Input{
			Key: policy.KeyInput{ID: authInfo.KeyID, Name: authInfo.Name},
			Request: policy.ReqInput{
				Operation:  string(op),
				Style:      string(style),
				Language:   req.Lang(),
				TextLength: len(in.Text),
			},
			Time: policy.TimeInput{Hour: now.Hour(), Day: now.Weekday().String()},
		})
		if err != nil || !allowed {
			slog.Warn("request denied by policy",
				"request_id", reqID,
				"key_id", authInfo.KeyID,
				"reason", reason,
			)
			httputil.WritePolicyDeniedError(w, reqID, "Request denied by policy: "+reason)
			return
		}
	}

	resp, err := h.processor.Process(r.Context(), req)
	if err != nil {
		// Only caller misuse or a dropped connection reaches here; every
		// provider failure comes back inside the Response.
		httputil.WriteBadRequestError(w, reqID, err.Error())
		return
	}

	slog.Info("request completed",
		"request_id", reqID,
		"key_id", authInfo.KeyID,
		"operation", string(op),
		"suggestions", len(resp.Suggestions),
		"failed", resp.Failed(),
		"duration_ms", time.Since(receivedAt).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func allowedOperation(info *auth.AuthInfo, op string) bool {
	if len(info.AllowedOperations) == 0 {
		return true
	}
	for _, allowed := range info.AllowedOperations {
		if allowed == op {
			return true
		}
	}
	return false
}

// ListOperations handles GET /v1/operations
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, w.Header().Get("X-Request-ID"), "Not authenticated")
		return
	}

	var ops []operationObject
	for _, op := range []types.Operation{types.OpGrammarCheck, types.OpRephrase} {
		if !allowedOperation(authInfo, string(op)) {
			continue
		}
		obj := operationObject{Name: string(op)}
		if op == types.OpRephrase {
			obj.Styles = []string{
				string(types.StyleFormal),
				string(types.StyleCasual),
				string(types.StyleConcise),
				string(types.StyleDetailed),
			}
		}
		ops = append(ops, obj)
	}

	resp := operationListResponse{
		Object: "list",
		Data:   ops,
	}
	if h.chain != nil {
		primary, fallback := h.chain()
		resp.Providers = &providerChain{Primary: primary, Fallback: fallback}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type operationObject struct {
	Name   string   `json:"name"`
	Styles []string `json:"styles,omitempty"`
}

type providerChain struct {
	Primary  string `json:"primary"`
	Fallback string `json:"fallback,omitempty"`
}

type operationListResponse struct {
	Object    string            `json:"object"`
	Data      []operationObject `json:"data"`
	Providers *providerChain    `json:"providers,omitempty"`
}
