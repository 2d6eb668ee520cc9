package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e0as/mobile-bridge/internal/api"
)

func TestMyResponsesFilterQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).MyResponses(context.Background(), &api.ResponsesFilter{
		FormType: api.FormTypeInjury,
		Status:   api.ResponseStatusDraft,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "formType=injury")
	assert.Contains(t, gotQuery, "status=draft")
}

func TestMyResponsesCookieVariantFallback(t *testing.T) {
	var cookiesSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie := r.Header.Get("Cookie")
		cookiesSeen = append(cookiesSeen, cookie)
		// the canonical __Host-sid form is rejected, the short sid form works
		if strings.HasPrefix(cookie, "sid=") {
			w.Write([]byte(`[{"_id": "r1", "formId": "f1", "userId": "u1", "status": "draft", "responses": []}]`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	responses, err := newTestClient(server.URL).MyResponses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "r1", responses[0].ID)

	require.NotEmpty(t, cookiesSeen)
	assert.Equal(t, "__Host-sid=abc123", cookiesSeen[0], "canonical form must be tried first")
	assert.Contains(t, cookiesSeen, "sid=abc123")
}

func TestMyResponsesForbiddenAfterAllVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "forbidden"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).MyResponses(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, api.IsForbidden(err), "original 403 must survive the probe")
}

func TestFormIDStringBothShapes(t *testing.T) {
	bare := api.FormResponse{FormID: json.RawMessage(`"f1"`)}
	assert.Equal(t, "f1", bare.FormIDString())

	populated := api.FormResponse{FormID: json.RawMessage(`{"_id": "f2", "title": "Daily wellness"}`)}
	assert.Equal(t, "f2", populated.FormIDString())

	var empty api.FormResponse
	assert.Equal(t, "", empty.FormIDString())
}

func TestGetOrCreateFormResponse(t *testing.T) {
	assigned := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/form-responses/me":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/form-responses/assign/me" && r.Method == http.MethodPost:
			assigned = true
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "f1", payload["formId"])
			w.Write([]byte(`{"_id": "r9", "formId": "f1", "userId": "u1", "status": "draft", "responses": []}`))
		case strings.HasPrefix(r.URL.Path, "/form-responses/form/"):
			w.Write([]byte(`{"_id": "r9", "formId": "f1", "userId": "u1", "status": "draft", "responses": [],
				"questions": [{"_id": "q1", "enunciado": "Nivel de dolor", "tipo": "escala", "requerida": true, "orden": 1, "escalaMin": 1, "escalaMax": 10}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	response, created, err := newTestClient(server.URL).GetOrCreateFormResponse(context.Background(), "f1")
	require.NoError(t, err)

	assert.True(t, created)
	assert.True(t, assigned)
	require.Len(t, response.Questions, 1)
	assert.Equal(t, "Nivel de dolor", response.Questions[0].Statement)
}

func TestSubmitFormUsesPatch(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"_id": "r1", "formId": "f1", "userId": "u1", "status": "submitted", "responses": []}`))
	}))
	defer server.Close()

	response, err := newTestClient(server.URL).SubmitForm(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/form-responses/response/r1/submit", gotPath)
	assert.Equal(t, api.ResponseStatusSubmitted, response.Status)
}

func TestSaveFormResponsesDefaultsToDraft(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"_id": "r1", "formId": "f1", "userId": "u1", "status": "draft", "responses": []}`))
	}))
	defer server.Close()

	answers := []api.Answer{{QuestionID: "q1", Answer: 7}}
	_, err := newTestClient(server.URL).SaveFormResponses(context.Background(), "f1", "r1", answers, "")
	require.NoError(t, err)

	assert.Equal(t, "draft", payload["status"])
	assert.Equal(t, "f1", payload["formId"])
	assert.Equal(t, "r1", payload["formResponseId"])
}
