package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskapi/internal/errors"
)

type signupBody struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (b *signupBody) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
}

type taskBody struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Status  *string  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	DueDate *string  `json:"dueDate" validate:"omitempty,duedate"`
	Tags    []string `json:"tags" validate:"max=20,dive,max=50"`
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	v := New()

	err := v.Validate(&signupBody{Name: " A ", Email: "nope", Password: "123", ConfirmPassword: "456"})
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{
		"name must be at least 2 characters long",
		"please provide a valid email address",
		"password must be at least 6 characters long",
		"confirmPassword does not match",
	}, verr.Violations)
}

func TestValidate_NormalizesBeforeChecking(t *testing.T) {
	v := New()

	body := &signupBody{Name: "  Alice  ", Email: "  A@X.com ", Password: "secret1", ConfirmPassword: "secret1"}
	require.NoError(t, v.Validate(body))
	assert.Equal(t, "Alice", body.Name)
	assert.Equal(t, "a@x.com", body.Email)
}

func TestValidate_TaskRules(t *testing.T) {
	v := New()
	bad := "done"
	date := "tomorrow"

	err := v.Validate(&taskBody{
		Title:   strings.Repeat("x", 201),
		Status:  &bad,
		DueDate: &date,
		Tags:    []string{strings.Repeat("t", 51)},
	})

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{
		"title cannot exceed 200 characters",
		"status must be one of: pending, in-progress, completed",
		"dueDate must be a valid date (YYYY-MM-DD or RFC 3339)",
		"tags[0] cannot exceed 50 characters",
	}, verr.Violations)

	ok := "in-progress"
	day := "2026-01-02"
	assert.NoError(t, v.Validate(&taskBody{Title: "T1", Status: &ok, DueDate: &day}))
}

func TestParseDueDate(t *testing.T) {
	d, err := ParseDueDate("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDueDate("2026-03-04T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC), *d)

	d, err = ParseDueDate("  ")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDueDate("04/03/2026")
	assert.Error(t, err)
}

type profileBody struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Avatar *string `json:"avatar" validate:"omitempty,urlorempty"`
}

func TestValidate_OptionalFields(t *testing.T) {
	v := New()
	empty := ""
	link := "https://cdn.example.com/a.png"
	bad := "not a url"

	assert.NoError(t, v.Validate(&profileBody{}))
	assert.NoError(t, v.Validate(&profileBody{Avatar: &empty}))
	assert.NoError(t, v.Validate(&profileBody{Avatar: &link}))

	err := v.Validate(&profileBody{Avatar: &bad})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"avatar must be a valid URL"}, verr.Violations)
}
