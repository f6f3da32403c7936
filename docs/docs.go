package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness message",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "API is up",
                        "schema": {"$ref": "#/definitions/MessageResponse"}
                    }
                }
            }
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "All tasks in insertion order",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
                    }
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {"$ref": "#/definitions/TaskRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Task created",
                        "schema": {"$ref": "#/definitions/TaskCreatedResponse"}
                    },
                    "400": {
                        "description": "Title or description missing",
                        "schema": {"$ref": "#/definitions/MessageResponse"}
                    }
                }
            }
        },
        "/tasks/import": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Import tasks from CSV",
                "description": "Header row must contain title and description columns",
                "consumes": ["text/csv"],
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Number of imported tasks"},
                    "400": {
                        "description": "Malformed CSV",
                        "schema": {"$ref": "#/definitions/MessageResponse"}
                    }
                }
            }
        },
        "/tasks/{id}": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Replace a task's title and description",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {"$ref": "#/definitions/TaskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Task updated", "schema": {"$ref": "#/definitions/TaskUpdatedResponse"}},
                    "400": {"description": "Title or description missing", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "404": {"description": "Task not found", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "500": {"description": "Task vanished during update", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "deleteTask is null when nothing was deleted", "schema": {"$ref": "#/definitions/TaskDeletedResponse"}}
                }
            }
        },
        "/tasks/{id}/complete": {
            "patch": {
                "tags": ["Tasks"],
                "summary": "Mark a task as completed",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task completed", "schema": {"$ref": "#/definitions/TaskUpdatedResponse"}},
                    "404": {"description": "Task not found", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "500": {"description": "Task vanished during update", "schema": {"$ref": "#/definitions/MessageResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {"200": {"description": "Server is healthy"}}
            }
        }
    },
    "definitions": {
        "MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "completed_at": {"type": "integer", "x-nullable": true},
                "created_at": {"type": "integer"},
                "updated_at": {"type": "integer", "x-nullable": true}
            }
        },
        "TaskRequest": {
            "type": "object",
            "required": ["title", "description"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "TaskCreatedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/Task"}
            }
        },
        "TaskUpdatedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "task": {"$ref": "#/definitions/Task"}
            }
        },
        "TaskDeletedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "deleteTask": {"$ref": "#/definitions/Task"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Tasks API",
	Description:      "Task list service backed by a flat JSON file",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
