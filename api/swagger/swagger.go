package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Timetable composition, conflict resolution and what-if simulation",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Composition, simulation and lifecycle"},
        {"name": "Exports", "description": "Read-only calendar and file renditions"}
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
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetables",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/compose": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Compose a timetable from an ordered proposal batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComposeTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete inactive timetable version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/simulate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Simulate edits against a committed timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SimulateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/activate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Activate a timetable version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/calendar": {
            "get": {
                "tags": ["Exports"],
                "summary": "Calendar feed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/export/csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "CSV export",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/timetables/{id}/export/pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "PDF export",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "SlotProposal": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "courseId": {"type": "string"},
                "teacherId": {"type": "string"},
                "roomId": {"type": "string"},
                "classId": {"type": "string"},
                "sessionType": {"type": "string"},
                "equipmentNeeded": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["day", "startTime", "endTime"]
        },
        "ComposeConstraints": {
            "type": "object",
            "properties": {
                "maxTeacherHours": {"type": "integer"},
                "preferredRooms": {"type": "array", "items": {"type": "string"}},
                "avoidDays": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ComposeTimetableRequest": {
            "type": "object",
            "properties": {
                "termId": {"type": "string"},
                "classId": {"type": "string"},
                "requestedBy": {"type": "string"},
                "constraints": {"$ref": "#/definitions/ComposeConstraints"},
                "proposals": {"type": "array", "items": {"$ref": "#/definitions/SlotProposal"}}
            },
            "required": ["termId"]
        },
        "SlotPatch": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "courseId": {"type": "string"},
                "teacherId": {"type": "string"},
                "roomId": {"type": "string"},
                "classId": {"type": "string"},
                "sessionType": {"type": "string"},
                "equipmentNeeded": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SimulationChange": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["add", "update", "delete"]},
                "slotId": {"type": "string"},
                "slotIndex": {"type": "integer"},
                "newData": {"$ref": "#/definitions/SlotProposal"},
                "patch": {"$ref": "#/definitions/SlotPatch"}
            },
            "required": ["action"]
        },
        "SimulateTimetableRequest": {
            "type": "object",
            "properties": {
                "changes": {"type": "array", "items": {"$ref": "#/definitions/SimulationChange"}}
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
