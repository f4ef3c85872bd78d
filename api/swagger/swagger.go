package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Timetable API",
        "description": "Timetable scheduling and conflict-resolution engine",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Generation, manual authoring and publication"},
        {"name": "Instructors", "description": "Admission-controlled instructor assignments"},
        {"name": "Departments", "description": "Working-hours configuration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate and publish a timetable for a cohort tuple",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/manual": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Submit a hand-authored timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitManualTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Rejected with per-session issues"}
                }
            }
        },
        "/api/v1/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetable versions for a cohort tuple",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string", "required": true},
                    {"name": "batchId", "in": "query", "type": "string", "required": true},
                    {"name": "semesterId", "in": "query", "type": "string", "required": true},
                    {"name": "section", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable's session tree",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a timetable and its sessions",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/timetables/{id}/status": {
            "patch": {
                "tags": ["Timetables"],
                "summary": "Toggle publish state of a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetTimetableStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/{id}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Export a timetable as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/instructor-assignments": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Assign an instructor to a course section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Capacity heuristic rejected the assignment"}
                }
            }
        },
        "/api/v1/departments/{id}/work-hours": {
            "get": {
                "tags": ["Departments"],
                "summary": "Get a department's working-hours configuration",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["departmentId", "batchId", "semesterId", "section"],
            "properties": {
                "departmentId": {"type": "string"},
                "batchId": {"type": "string"},
                "semesterId": {"type": "string"},
                "section": {"type": "string"}
            }
        },
        "SubmitManualTimetableRequest": {
            "type": "object",
            "required": ["departmentId", "batchId", "semesterId", "section", "status", "days"],
            "properties": {
                "departmentId": {"type": "string"},
                "batchId": {"type": "string"},
                "semesterId": {"type": "string"},
                "section": {"type": "string"},
                "timetableId": {"type": "string"},
                "status": {"type": "string", "enum": ["DRAFT", "PUBLISHED"]},
                "days": {"type": "array", "items": {"type": "object"}}
            }
        },
        "SetTimetableStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["DRAFT", "PUBLISHED"]}
            }
        },
        "AssignInstructorRequest": {
            "type": "object",
            "required": ["departmentId", "courseId", "instructorId"],
            "properties": {
                "departmentId": {"type": "string"},
                "courseId": {"type": "string"},
                "instructorId": {"type": "string"}
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
