package academicapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
	apperrors "github.com/acadify/acadify-web/internal/errors"
)

// envelope is the `{success, message, data}` wrapper the API puts around most payloads.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

var errMalformed = errors.New("malformed response body")

// unwrap returns the payload of body: the `data` member of an envelope, or the
// body itself when it is not enveloped.
func unwrap(body []byte) (json.RawMessage, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", nil
	}
	if !json.Valid(trimmed) {
		return nil, "", errMalformed
	}
	if trimmed[0] != '{' {
		return trimmed, "", nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, "", errMalformed
	}
	if env.Success == nil {
		return trimmed, "", nil
	}
	if !*env.Success {
		return nil, firstNonEmpty(env.Message, env.Error), errEnvelopeRejected
	}
	return env.Data, env.Message, nil
}

var errEnvelopeRejected = errors.New("request rejected by api")

// errorMessage extracts a human-readable message from an error response body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return strings.TrimSpace(firstNonEmpty(env.Message, env.Error))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decode turns a response into its payload or a normalized failure.
func decode(resp *resty.Response, fallback string) (json.RawMessage, error) {
	status := resp.StatusCode()
	if status >= 400 {
		return nil, apperrors.FromStatus(status, errorMessage(resp.Body()), fallback)
	}
	data, msg, err := unwrap(resp.Body())
	switch {
	case errors.Is(err, errEnvelopeRejected):
		return nil, apperrors.FromStatus(400, msg, fallback)
	case err != nil:
		return nil, &apperrors.AuthError{
			Kind:    apperrors.KindServerError,
			Message: fallback,
			Status:  status,
			Cause:   err,
		}
	}
	return data, nil
}

// identityPayload accepts the identity shapes the API has used: a flat object,
// an object nested under "user", and numeric or string ids.
type identityPayload struct {
	ID     json.RawMessage  `json:"id"`
	UserID json.RawMessage  `json:"user_id"`
	Camel  json.RawMessage  `json:"userId"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   string           `json:"role"`
	User   *identityPayload `json:"user"`
}

func decodeIdentity(data json.RawMessage) (domainauth.UserIdentity, error) {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return domainauth.UserIdentity{}, errMalformed
	}
	var p identityPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domainauth.UserIdentity{}, errMalformed
	}
	if p.User != nil {
		p = *p.User
	}
	id := rawID(p.ID)
	if id == "" {
		id = rawID(p.UserID)
	}
	if id == "" {
		id = rawID(p.Camel)
	}
	role, _ := domainauth.ParseRole(p.Role)
	u := domainauth.UserIdentity{
		ID:    id,
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
		Role:  role,
	}
	if u.ID == "" && u.Email == "" {
		return domainauth.UserIdentity{}, errMalformed
	}
	return u, nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
