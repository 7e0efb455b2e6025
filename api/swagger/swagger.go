package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "RVNP Trainer Lesson Attendance API",
        "description": "Lesson attendance reporting and analytics for departmental trainers",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login, logout and session scope"},
        {"name": "Users", "description": "Account management"},
        {"name": "Entities", "description": "Trainers, classes and units per department"},
        {"name": "Assignments", "description": "Class rep to class links"},
        {"name": "Reports", "description": "Lesson attendance reports"},
        {"name": "Analytics", "description": "Attendance aggregation and export"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current session",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current session scope",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/departments": {
            "get": {
                "tags": ["Entities"],
                "summary": "List departments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "delete": {
                "tags": ["Users"],
                "summary": "Delete a user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/entities/{kind}": {
            "get": {
                "tags": ["Entities"],
                "summary": "List trainers, classes or units",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "kind", "required": true, "type": "string", "enum": ["trainers", "classes", "units"]},
                    {"in": "query", "name": "department", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Entities"],
                "summary": "Add an entity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "kind", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateEntityRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entities/{kind}/{id}": {
            "delete": {
                "tags": ["Entities"],
                "summary": "Delete an entity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "kind", "required": true, "type": "string"},
                    {"in": "path", "name": "id", "required": true, "type": "integer"}
                ],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/entities/{kind}/import": {
            "post": {
                "tags": ["Entities"],
                "summary": "Bulk import from CSV or XLSX",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "kind", "required": true, "type": "string"},
                    {"in": "formData", "name": "file", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List class rep assignments",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a class rep to a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AssignClassRepRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/assignments/{id}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove an assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/assignments/reps": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignable class reps",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List recent reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Submit a lesson report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SubmitReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already reported", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/delete": {
            "post": {
                "tags": ["Reports"],
                "summary": "Delete reports by id",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/DeleteReportsRequest"}}
                ],
                "responses": {"200": {"description": "Deleted count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/options": {
            "get": {
                "tags": ["Reports"],
                "summary": "Reporting form choices",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/attendance": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Attendance analytics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "period", "type": "string", "enum": ["all", "today", "this_week", "this_month", "this_year", "term1", "term2", "term3", "custom"]},
                    {"in": "query", "name": "year", "type": "integer"},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"},
                    {"in": "query", "name": "granularity", "type": "string", "enum": ["daily", "weekly", "monthly"]},
                    {"in": "query", "name": "trainers", "type": "string"},
                    {"in": "query", "name": "units", "type": "string"},
                    {"in": "query", "name": "classes", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/attendance/export": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export analytics as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "dataset", "type": "string", "enum": ["records", "trainers", "buckets", "reasons", "summary"]},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["SUPER_ADMIN", "HOD", "CLASS_REP"]},
                "department": {"type": "string"}
            }
        },
        "CreateEntityRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "AssignClassRepRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "class_name": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "SubmitReportRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "class_name": {"type": "string"},
                "unit_name": {"type": "string"},
                "trainer_name": {"type": "string"},
                "time_slot": {"type": "string"},
                "status": {"type": "string", "enum": ["Taught", "Not Taught"]},
                "reason": {"type": "string"},
                "remarks": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "DeleteReportsRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
