package academicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/acadify/acadify-web/internal/errors"
	"github.com/acadify/acadify-web/internal/ports"
)

// Read endpoints, relative to the API base URL.
const (
	StudentDashboardPath   = "/student/dashboard"
	StudentMarksPath       = "/student/marks"
	StudentAttendancePath  = "/student/attendance"
	StudentPerformancePath = "/student/analytics/performance"

	TeacherDashboardPath = "/teacher/dashboard"
	TeacherClassesPath   = "/teacher/classes"
	TeacherClassPath     = "/teacher/analytics/class/{class}"

	AdminDashboardPath = "/admin/dashboard"
	AdminUsersPath     = "/admin/users"
	AdminSystemPath    = "/admin/analytics/system"

	ProfilePath = "/profile"
)

// Write endpoints.
const (
	teacherSubmitGradesPath = "/teacher/grades/submit"
	adminCreateUserPath     = "/admin/users/create"
)

// DashboardClient implements ports.DashboardAPI over a Transport.
type DashboardClient struct {
	transport *Transport
}

var _ ports.DashboardAPI = (*DashboardClient)(nil)

// NewDashboardClient builds a DashboardClient sharing t's session.
func NewDashboardClient(t *Transport) *DashboardClient {
	return &DashboardClient{transport: t}
}

// Fetch GETs path and returns the decoded payload.
func (c *DashboardClient) Fetch(ctx context.Context, path string, query url.Values) (any, error) {
	resp, err := c.transport.send(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}
	data, err := decode(resp, apperrors.MsgRequestFailed)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &apperrors.AuthError{
			Kind:    apperrors.KindServerError,
			Message: apperrors.MsgRequestFailed,
			Status:  resp.StatusCode(),
			Cause:   err,
		}
	}
	return out, nil
}

// SubmitGrades records a grade for a student.
func (c *DashboardClient) SubmitGrades(ctx context.Context, grade map[string]any) error {
	return c.mutate(ctx, http.MethodPost, teacherSubmitGradesPath, grade, "Failed to submit grades")
}

// CreateUser creates an account (admin only).
func (c *DashboardClient) CreateUser(ctx context.Context, user map[string]any) error {
	return c.mutate(ctx, http.MethodPost, adminCreateUserPath, user, "Failed to create user")
}

// UpdateUser changes fields of an existing account (admin only).
func (c *DashboardClient) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	return c.mutate(ctx, http.MethodPut, UserPath(id), fields, "Failed to update user")
}

// DeleteUser removes an account (admin only).
func (c *DashboardClient) DeleteUser(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, UserPath(id), nil, "Failed to delete user")
}

// UpdateProfile changes the signed-in user's own profile.
func (c *DashboardClient) UpdateProfile(ctx context.Context, fields map[string]any) error {
	return c.mutate(ctx, http.MethodPut, ProfilePath, fields, "Failed to update profile")
}

func (c *DashboardClient) mutate(ctx context.Context, method, path string, body any, fallback string) error {
	resp, err := c.transport.send(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	_, err = decode(resp, fallback)
	return err
}

// UserPath is the admin path for a single account.
func UserPath(id string) string { return AdminUsersPath + "/" + url.PathEscape(id) }
