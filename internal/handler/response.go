package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskapi/internal/auth"
	"taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/middleware"
)

const statusSuccess = "success"

// MessageResponse is a success envelope with no payload.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DataResponse is a success envelope around a single payload.
type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

func ok(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, DataResponse{Status: statusSuccess, Message: message, Data: data})
}

// fail converts a domain error into an echo.HTTPError carrying the
// structured body. Internal errors are logged and never described.
func fail(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.HTTP().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Status: "fail",
			Error:  "invalid request body",
			Code:   "BAD_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return fail(c, err)
	}
	return nil
}

func currentIdentity(c echo.Context) (auth.Identity, error) {
	id, found := middleware.CurrentIdentity(c)
	if !found {
		return auth.Identity{}, fail(c, errors.ErrUnauthenticated)
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fail(c, errors.ErrInvalidID)
	}
	return id, nil
}

// HTTPErrorHandler renders every error in the structured envelope: bodies
// built by handlers pass through, bare echo errors get a generic code, and
// anything else (middleware errors included) goes through MapErrorToHTTP.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code int
		body errors.ErrorResponse
	)

	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		code = he.Code
		switch msg := he.Message.(type) {
		case errors.ErrorResponse:
			body = msg
		case string:
			body = errors.NewHTTPError(code, msg, codeFor(code)).ToErrorResponse()
		default:
			body = errors.NewHTTPError(code, http.StatusText(code), codeFor(code)).ToErrorResponse()
		}
	} else {
		mapped := errors.MapErrorToHTTP(err)
		if mapped.StatusCode >= http.StatusInternalServerError {
			logger.HTTP().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}
		code = mapped.StatusCode
		body = mapped.ToErrorResponse()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logger.HTTP().Errorf("write error response: %v", err)
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}
