package ports

import (
	"context"
	"net/url"
)

// DashboardAPI reads and mutates role-scoped academic data. Decoded payloads are
// plain JSON values (maps, slices, numbers, strings) so pages can query them.
type DashboardAPI interface {
	Fetch(ctx context.Context, path string, query url.Values) (any, error)
	SubmitGrades(ctx context.Context, grade map[string]any) error
	CreateUser(ctx context.Context, user map[string]any) error
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	DeleteUser(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, fields map[string]any) error
}
