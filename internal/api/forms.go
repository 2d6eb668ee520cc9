package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/e0as/mobile-bridge/internal/cookies"
	"github.com/e0as/mobile-bridge/internal/log"
)

// FormType categorizes the backend's dynamically defined forms
type FormType string

const (
	FormTypeInjury       FormType = "injury"
	FormTypeWellness     FormType = "wellness"
	FormTypeTrainingLoad FormType = "training-load"
)

// ResponseStatus is the lifecycle state of a form response
type ResponseStatus string

const (
	ResponseStatusDraft     ResponseStatus = "draft"
	ResponseStatusSubmitted ResponseStatus = "submitted"
	ResponseStatusValidated ResponseStatus = "validated"
)

// Form is a published form definition
type Form struct {
	ID        string   `json:"_id"`
	Title     string   `json:"title"`
	FormType  FormType `json:"formType"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// FormQuestion is one question of a form, with the user's saved answer
// when the response already exists
type FormQuestion struct {
	ID         string          `json:"_id"`
	Statement  string          `json:"enunciado"`
	Type       string          `json:"tipo"`
	Required   bool            `json:"requerida"`
	Order      int             `json:"orden"`
	Options    []string        `json:"opciones,omitempty"`
	ScaleMin   int             `json:"escalaMin,omitempty"`
	ScaleMax   int             `json:"escalaMax,omitempty"`
	UserAnswer json.RawMessage `json:"userAnswer,omitempty"`
}

// Answer pairs a question with the user's answer
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

// FormResponse is one user's response to an assigned form
type FormResponse struct {
	ID          string          `json:"_id"`
	FormID      json.RawMessage `json:"formId"` // bare ID or populated form object, varies by endpoint
	UserID      string          `json:"userId"`
	Status      ResponseStatus  `json:"status"`
	Responses   []Answer        `json:"responses"`
	Questions   []FormQuestion  `json:"questions,omitempty"`
	SubmittedAt string          `json:"submittedAt,omitempty"`
	ValidatedAt string          `json:"validatedAt,omitempty"`
}

// FormIDString resolves the formId field whether the backend returned it
// as a bare ID or as a populated form object.
func (r *FormResponse) FormIDString() string {
	var id string
	if err := json.Unmarshal(r.FormID, &id); err == nil {
		return id
	}
	var form struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(r.FormID, &form); err == nil {
		return form.ID
	}
	return ""
}

// ResponsesFilter narrows MyResponses queries
type ResponsesFilter struct {
	FormType FormType
	Status   ResponseStatus
}

// Forms lists the available published forms
func (c *Client) Forms(ctx context.Context) ([]Form, error) {
	body, err := c.do(ctx, http.MethodGet, "/forms", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Form](body)
}

// AssignFormToMe self-assigns a form, creating an empty response
func (c *Client) AssignFormToMe(ctx context.Context, formID string, questionsToAsk []string) (*FormResponse, error) {
	if questionsToAsk == nil {
		questionsToAsk = []string{}
	}
	payload := map[string]any{
		"formId":         formID,
		"questionsToAsk": questionsToAsk,
	}
	body, err := c.do(ctx, http.MethodPost, "/form-responses/assign/me", nil, payload)
	if err != nil {
		return nil, err
	}
	resp, err := decodeObject[FormResponse](body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FormQuestions fetches the questions of an assigned response
func (c *Client) FormQuestions(ctx context.Context, formResponseID string) (*FormResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/form-responses/form/"+url.PathEscape(formResponseID), nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := decodeObject[FormResponse](body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveFormResponses stores answers, as a draft unless status says otherwise
func (c *Client) SaveFormResponses(ctx context.Context, formID, formResponseID string, answers []Answer, status ResponseStatus) (*FormResponse, error) {
	if status == "" {
		status = ResponseStatusDraft
	}
	payload := map[string]any{
		"formId":         formID,
		"formResponseId": formResponseID,
		"status":         status,
		"responses":      answers,
	}
	body, err := c.do(ctx, http.MethodPost, "/form-responses", nil, payload)
	if err != nil {
		return nil, err
	}
	resp, err := decodeObject[FormResponse](body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitForm marks a response as submitted
func (c *Client) SubmitForm(ctx context.Context, formResponseID string) (*FormResponse, error) {
	body, err := c.do(ctx, http.MethodPatch, "/form-responses/response/"+url.PathEscape(formResponseID)+"/submit", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := decodeObject[FormResponse](body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyResponses lists the caller's form responses, optionally filtered.
// A 403 here has historically meant a cookie-name mismatch rather than a
// real permission problem, so the known name variants are probed once
// before the error is surfaced.
func (c *Client) MyResponses(ctx context.Context, filter *ResponsesFilter) ([]FormResponse, error) {
	query := url.Values{}
	if filter != nil {
		if filter.FormType != "" {
			query.Set("formType", string(filter.FormType))
		}
		if filter.Status != "" {
			query.Set("status", string(filter.Status))
		}
	}

	body, err := c.do(ctx, http.MethodGet, "/form-responses/me", query, nil)
	if IsForbidden(err) {
		body, err = c.retryWithCookieVariants(ctx, "/form-responses/me", query, err)
	}
	if err != nil {
		return nil, err
	}
	return decodeList[FormResponse](body)
}

// MyResponsesByType lists the caller's responses for one form type
func (c *Client) MyResponsesByType(ctx context.Context, formType FormType) ([]FormResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/form-responses/me/type/"+url.PathEscape(string(formType)), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[FormResponse](body)
}

// GetOrCreateFormResponse returns the existing response for a form or
// self-assigns the form when none exists, then loads its questions.
func (c *Client) GetOrCreateFormResponse(ctx context.Context, formID string) (*FormResponse, bool, error) {
	existing, err := c.MyResponses(ctx, nil)
	if err != nil {
		return nil, false, err
	}

	for i := range existing {
		if existing[i].FormIDString() == formID {
			full, err := c.FormQuestions(ctx, existing[i].ID)
			if err != nil {
				return nil, false, err
			}
			return full, false, nil
		}
	}

	assigned, err := c.AssignFormToMe(ctx, formID, nil)
	if err != nil {
		return nil, false, err
	}
	full, err := c.FormQuestions(ctx, assigned.ID)
	if err != nil {
		return nil, false, err
	}
	return full, true, nil
}

// retryWithCookieVariants re-sends a GET with each historically seen
// cookie-name variant. The first 2xx wins; otherwise the original error
// is returned unchanged.
func (c *Client) retryWithCookieVariants(ctx context.Context, path string, query url.Values, original error) ([]byte, error) {
	cookie, ok := c.cookies.SessionCookie(ctx)
	if !ok {
		return nil, original
	}

	target, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, original
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for _, variant := range cookieVariants(cookie) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, original
		}
		req.Header.Set("Cookie", variant)

		body, err := c.send(req)
		if err == nil {
			log.LogWarnWithFields("api", "Cookie variant accepted where canonical form was forbidden", map[string]any{
				"path": path,
			})
			return body, nil
		}
	}
	return nil, original
}

// cookieVariants derives the alternate header forms observed across
// backend deployments from the matched pair.
func cookieVariants(c cookies.Cookie) []string {
	variants := []string{}
	if trimmed := strings.TrimLeft(c.Name, "_"); trimmed != c.Name {
		variants = append(variants,
			"_"+trimmed+"="+c.Value,
			trimmed+"="+c.Value,
		)
	}
	variants = append(variants,
		"sid="+c.Value,
		"session="+c.Value,
		c.Value,
	)
	return variants
}
