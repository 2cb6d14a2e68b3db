package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "KaraScolaire Admin Gateway",
        "description": "Session, screen state and dashboards of the KaraScolaire administration",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Session", "description": "Login, logout and preferences"},
        {"name": "Workspace", "description": "Cascading selectors and list tables"},
        {"name": "Users", "description": "User accounts and registrations"},
        {"name": "Classes", "description": "Class editing and roster export"},
        {"name": "Curriculum", "description": "Lessons and tests editor"},
        {"name": "Notifications", "description": "Notifications and messages"},
        {"name": "Parent", "description": "Children and progress of the parent account"},
        {"name": "Dashboard", "description": "Role dashboards"},
        {"name": "Audit", "description": "Admin action journal"}
    ],
    "securityDefinitions": {
        "SessionHeader": {"type": "apiKey", "in": "header", "name": "X-Session-ID"}
    },
    "paths": {
        "/session": {
            "post": {
                "tags": ["Session"],
                "summary": "Open a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid credentials payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Session"],
                "summary": "Current session",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Session"],
                "summary": "Log out",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/session/preferences": {
            "patch": {
                "tags": ["Session"],
                "summary": "Update display preferences",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cascades/{name}": {
            "get": {
                "tags": ["Workspace"],
                "summary": "Cascade state",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown cascade", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cascades/{name}/levels/{level}": {
            "put": {
                "tags": ["Workspace"],
                "summary": "Select a cascade level",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "level", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Selection replaced meanwhile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{name}": {
            "get": {
                "tags": ["Workspace"],
                "summary": "Table view",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{name}/filters": {
            "put": {
                "tags": ["Workspace"],
                "summary": "Apply table filters",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TableFilterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{name}/refresh": {
            "post": {
                "tags": ["Workspace"],
                "summary": "Reload table rows",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{name}/rows/{id}/delete-request": {
            "post": {
                "tags": ["Workspace"],
                "summary": "Ask to delete a row",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{name}/rows/{id}": {
            "delete": {
                "tags": ["Workspace"],
                "summary": "Delete a row",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Confirm-Token", "in": "header", "type": "string"},
                    {"name": "confirm", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "428": {"description": "Confirmation required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"SessionHeader": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UserForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"SessionHeader": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UserForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}/approve": {
            "put": {
                "tags": ["Users"],
                "summary": "Approve a registration",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/users/{id}/reject": {
            "put": {
                "tags": ["Users"],
                "summary": "Reject a registration",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Classes"],
                "summary": "Update class",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/students/export": {
            "get": {
                "tags": ["Classes"],
                "summary": "Export class roster",
                "security": [{"SessionHeader": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster file"}
                }
            }
        },
        "/classes/students/{id}/pass": {
            "post": {
                "tags": ["Classes"],
                "summary": "Set pass status of a student",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PassRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/editor": {
            "get": {
                "tags": ["Curriculum"],
                "summary": "Editor state",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/editor/program": {
            "put": {
                "tags": ["Curriculum"],
                "summary": "Select program and unit",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProgramSelection"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/lessons": {
            "post": {
                "tags": ["Curriculum"],
                "summary": "Create lesson",
                "security": [{"SessionHeader": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/lessons/{id}": {
            "put": {
                "tags": ["Curriculum"],
                "summary": "Update lesson",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Curriculum"],
                "summary": "Delete lesson",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/lessons/{id}/tests": {
            "post": {
                "tags": ["Curriculum"],
                "summary": "Create test",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TestForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/curriculum/lessons/{id}/tests/{testId}": {
            "put": {
                "tags": ["Curriculum"],
                "summary": "Update test",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "testId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TestForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Curriculum"],
                "summary": "Delete test",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "testId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete all notifications",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/read-all": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications read",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete a notification",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/messages/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unread message count",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/messages/received": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Received messages",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/parent/children": {
            "get": {
                "tags": ["Parent"],
                "summary": "Children of the parent",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/parent/progress": {
            "get": {
                "tags": ["Parent"],
                "summary": "Progress of the children",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Parent"],
                "summary": "Clear progress history",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard of the session role",
                "security": [{"SessionHeader": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "List journal entries",
                "security": [{"SessionHeader": []}],
                "parameters": [
                    {"name": "session_id", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": ["token", "nom", "role"],
            "properties": {
                "token": {"type": "string"},
                "nom": {"type": "string"},
                "prenom": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "teacher", "parent", "student"]}
            }
        },
        "PreferencesRequest": {
            "type": "object",
            "required": ["darkMode"],
            "properties": {
                "darkMode": {"type": "boolean"}
            }
        },
        "SelectRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}
            }
        },
        "TableFilterRequest": {
            "type": "object",
            "properties": {
                "search": {"type": "string"},
                "server": {"type": "object", "additionalProperties": {"type": "string"}},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "Child": {
            "type": "object",
            "required": ["niveau", "classe", "eleve"],
            "properties": {
                "niveau": {"type": "string"},
                "classe": {"type": "string"},
                "eleve": {"type": "string"}
            }
        },
        "UserForm": {
            "type": "object",
            "required": ["role", "nom", "prenom", "email"],
            "properties": {
                "role": {"type": "string", "enum": ["admin", "teacher", "parent", "student"]},
                "nom": {"type": "string"},
                "prenom": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "telephone": {"type": "string"},
                "specialite": {"type": "string"},
                "numInscription": {"type": "string"},
                "niveau": {"type": "string"},
                "classe": {"type": "string"},
                "children": {"type": "array", "items": {"$ref": "#/definitions/Child"}}
            }
        },
        "PassRequest": {
            "type": "object",
            "required": ["hasPassed"],
            "properties": {
                "hasPassed": {"type": "boolean"}
            }
        },
        "ProgramSelection": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "unitId": {"type": "string"}
            }
        },
        "LessonForm": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "programId": {"type": "string"},
                "unitId": {"type": "string"}
            }
        },
        "TestForm": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"}
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
