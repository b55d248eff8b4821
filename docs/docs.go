// Package docs registers the Swagger document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {"get": {"tags": ["system"], "summary": "API information", "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unreachable"}}}},
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create an account", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.SignupRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}, "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}, "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}], "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}, "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current identity", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}}},
        "/auth/refresh": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Issue a fresh token", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}},
        "/user/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Get profile", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Update profile", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation failed"}}}
        },
        "/user/password": {"put": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Change password", "responses": {"200": {"description": "OK"}, "401": {"description": "Incorrect password"}}}},
        "/user/account": {"delete": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Delete account and all of its tasks", "responses": {"200": {"description": "OK"}, "401": {"description": "Incorrect password"}}}},
        "/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "List tasks", "parameters": [
                {"in": "query", "name": "status", "type": "string"},
                {"in": "query", "name": "priority", "type": "string"},
                {"in": "query", "name": "search", "type": "string"},
                {"in": "query", "name": "sortBy", "type": "string"},
                {"in": "query", "name": "sortOrder", "type": "string"},
                {"in": "query", "name": "page", "type": "integer"},
                {"in": "query", "name": "limit", "type": "integer"}
            ], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Delete every completed task", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Task statistics", "responses": {"200": {"description": "OK"}}}},
        "/tasks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Get a task", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Update a task", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Delete a task", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/tasks/{id}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Update task status only", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}}
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "retryAfter": {"type": "integer"}
            }
        },
        "handler.SignupRequest": {
            "type": "object",
            "required": ["name", "email", "password", "confirmPassword"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Task API",
	Description:      "Personal task tracking API with JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
