package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aula Planner API",
        "description": "Classroom assignment form backed by an external optimization service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Form", "description": "Form sessions, rows, sliders and submission"},
        {"name": "Results", "description": "Downloads of archived solver results"}
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": ["Form"],
                "summary": "Open a new form session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/FormEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Form"],
                "summary": "Current form view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Form"],
                "summary": "Close a form session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/floors": {
            "put": {
                "tags": ["Form"],
                "summary": "Regenerate floor sections",
                "description": "Rebuilds every floor section. All classroom rows on every floor are discarded.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFloorCountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/floors/{floor}/classrooms": {
            "post": {
                "tags": ["Form"],
                "summary": "Add a classroom row to a floor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "floor", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RowEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/groups": {
            "post": {
                "tags": ["Form"],
                "summary": "Add an empty group row",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RowEnvelope"}}
                }
            }
        },
        "/sessions/{id}/slots": {
            "post": {
                "tags": ["Form"],
                "summary": "Add an empty time slot row",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RowEnvelope"}}
                }
            }
        },
        "/sessions/{id}/rows/{rowId}": {
            "patch": {
                "tags": ["Form"],
                "summary": "Edit a row's name or quantity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "rowId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRowRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RowEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Form"],
                "summary": "Remove a row",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "rowId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/parameters": {
            "put": {
                "tags": ["Form"],
                "summary": "Move the delta and/or lambda sliders",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetParametersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/solve": {
            "post": {
                "tags": ["Form"],
                "summary": "Submit the form to the solver",
                "description": "Validates synchronously. On success the solver call runs in the background; poll GET /sessions/{id} for the outcome.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "409": {"description": "Submission in flight", "schema": {"$ref": "#/definitions/FormEnvelope"}},
                    "422": {"description": "Incomplete form", "schema": {"$ref": "#/definitions/FormEnvelope"}}
                }
            }
        },
        "/results/{resultId}/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download a solver result",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "resultId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SetFloorCountRequest": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "minimum": 0, "maximum": 50}
            },
            "required": ["count"]
        },
        "EditRowRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "string"}
            }
        },
        "SetParametersRequest": {
            "type": "object",
            "properties": {
                "delta": {"type": "number", "minimum": 0, "maximum": 100},
                "lambda": {"type": "number"}
            }
        },
        "Row": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["classroom", "group", "slot"]},
                "floor": {"type": "integer"},
                "name": {"type": "string"},
                "quantity": {"type": "string"}
            }
        },
        "FloorSection": {
            "type": "object",
            "properties": {
                "number": {"type": "integer"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/Row"}}
            }
        },
        "FormView": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "floorCount": {"type": "integer"},
                "floors": {"type": "array", "items": {"$ref": "#/definitions/FloorSection"}},
                "groups": {"type": "array", "items": {"$ref": "#/definitions/Row"}},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/Row"}},
                "parameters": {
                    "type": "object",
                    "properties": {
                        "delta": {"type": "number"},
                        "deltaLabel": {"type": "string"},
                        "lambda": {"type": "number"},
                        "lambdaLabel": {"type": "string"}
                    }
                },
                "control": {
                    "type": "object",
                    "properties": {
                        "enabled": {"type": "boolean"},
                        "busy": {"type": "boolean"},
                        "label": {"type": "string"}
                    }
                },
                "submission": {
                    "type": "object",
                    "properties": {
                        "state": {"type": "string"},
                        "outcome": {"type": "string"},
                        "attempts": {"type": "integer"},
                        "variant": {"type": "string", "enum": ["neutral", "success", "error"]},
                        "message": {"type": "string"},
                        "text": {"type": "string"},
                        "resultId": {"type": "string"}
                    }
                }
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
        },
        "FormEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/FormView"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        },
        "RowEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "row": {"$ref": "#/definitions/Row"},
                        "view": {"$ref": "#/definitions/FormView"}
                    }
                }
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
