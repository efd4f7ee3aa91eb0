// Package docs registers the OpenAPI description served at /swagger.
// The template is maintained by hand alongside the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register",
                "description": "The first registration becomes the superadmin; every later one needs an invite token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/chat/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["chat"],
                "summary": "Open a live chat connection",
                "description": "Upgrades to WebSocket. Frames: join_room, leave_room, send_message.",
                "parameters": [{"type": "string", "in": "query", "name": "token", "description": "JWT when no Authorization header can be sent"}],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/chat/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["chat"],
                "summary": "Recent messages of a room, oldest first",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "query", "name": "room", "required": true},
                    {"type": "integer", "in": "query", "name": "limit", "description": "default 50, max 200"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/historyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/invites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "List invites",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/inviteResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Issue an invite token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/issueInviteRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/inviteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/invites/{token}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Revoke an unused invite",
                "parameters": [{"type": "string", "in": "path", "name": "token", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/users/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Approve a registered identity",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Inbox of the caller, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/inboxResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Send a notification",
                "description": "recipient is \"all\", \"admin\" or a user id; empty means \"admin\". Members always reach the admin group. A privileged sender addressing a user id that does not exist gets 404 and nothing is stored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/sendNotificationRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Notification"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/v1/notifications/{id}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Mark a notification read",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Notification"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "kind": {"type": "string"}}
        },
        "registerRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "name": {"type": "string", "maxLength": 64},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72},
                "invite_token": {"type": "string"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "authResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["superadmin", "admin", "member"]},
                "approved": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "issueInviteRequest": {
            "type": "object",
            "required": ["ttl_hours"],
            "properties": {"ttl_hours": {"type": "integer", "minimum": 1, "maximum": 720}}
        },
        "inviteResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "state": {"type": "string", "enum": ["valid", "consumed", "expired"]},
                "expires_at": {"type": "string"},
                "created_by": {"type": "string"},
                "used_by": {"type": "string"},
                "used_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "sendNotificationRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string"}, "recipient": {"type": "string"}}
        },
        "domain.Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sender_id": {"type": "string"},
                "recipient": {"type": "string"},
                "content": {"type": "string"},
                "is_read": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "inboxResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.Notification"}},
                "unread": {"type": "integer"}
            }
        },
        "domain.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "room": {"type": "string"},
                "sender_id": {"type": "string"},
                "content": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "historyResponse": {
            "type": "object",
            "properties": {
                "room": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/domain.Message"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Collective API",
	Description:      "Rooms, live chat, invites and notifications for a small team.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
