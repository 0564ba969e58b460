// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler
// annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/signup/": {
            "post": {
                "tags": ["auth"], "summary": "Sign up",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/signupRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/signupRequest"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/token/": {
            "post": {
                "tags": ["auth"], "summary": "Obtain an access token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/tokenRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/users/": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create a user", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/user"}}, "400": {"description": "Bad Request"}}}
        },
        "/users/me/": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user"}}, "401": {"description": "Unauthorized"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user"}}, "400": {"description": "Bad Request"}}}
        },
        "/users/{username}/": {
            "parameters": [{"in": "path", "name": "username", "required": true, "type": "string"}],
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Retrieve a user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user"}}, "404": {"description": "Not Found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update a user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user"}}, "400": {"description": "Bad Request"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete a user", "responses": {"204": {"description": "No Content"}}}
        },
        "/categories/": {
            "get": {"tags": ["catalog"], "summary": "List categories", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Create a category", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/taxon"}}}}
        },
        "/categories/{slug}/": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Delete a category", "parameters": [{"in": "path", "name": "slug", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/genres/": {
            "get": {"tags": ["catalog"], "summary": "List genres", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Create a genre", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/taxon"}}}}
        },
        "/genres/{slug}/": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Delete a genre", "parameters": [{"in": "path", "name": "slug", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/titles/": {
            "get": {"tags": ["catalog"], "summary": "List titles", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Create a title", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/title"}}}}
        },
        "/titles/{title_id}/": {
            "parameters": [{"in": "path", "name": "title_id", "required": true, "type": "integer"}],
            "get": {"tags": ["catalog"], "summary": "Retrieve a title", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/title"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Update a title", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/title"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Delete a title", "responses": {"204": {"description": "No Content"}}}
        },
        "/titles/{title_id}/reviews/": {
            "parameters": [{"in": "path", "name": "title_id", "required": true, "type": "integer"}],
            "get": {"tags": ["reviews"], "summary": "List reviews", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["reviews"], "summary": "Create a review", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/review"}}}}
        },
        "/titles/{title_id}/reviews/{review_id}/": {
            "parameters": [{"in": "path", "name": "title_id", "required": true, "type": "integer"}, {"in": "path", "name": "review_id", "required": true, "type": "integer"}],
            "get": {"tags": ["reviews"], "summary": "Retrieve a review", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/review"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["reviews"], "summary": "Update a review", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/review"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["reviews"], "summary": "Delete a review", "responses": {"204": {"description": "No Content"}}}
        },
        "/titles/{title_id}/reviews/{review_id}/comments/": {
            "parameters": [{"in": "path", "name": "title_id", "required": true, "type": "integer"}, {"in": "path", "name": "review_id", "required": true, "type": "integer"}],
            "get": {"tags": ["comments"], "summary": "List comments", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Create a comment", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/comment"}}}}
        },
        "/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/": {
            "parameters": [{"in": "path", "name": "title_id", "required": true, "type": "integer"}, {"in": "path", "name": "review_id", "required": true, "type": "integer"}, {"in": "path", "name": "comment_id", "required": true, "type": "integer"}],
            "get": {"tags": ["comments"], "summary": "Retrieve a comment", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/comment"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Update a comment", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/comment"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Delete a comment", "responses": {"204": {"description": "No Content"}}}
        }
    },
    "definitions": {
        "signupRequest": {"type": "object", "properties": {"username": {"type": "string"}, "email": {"type": "string"}}},
        "tokenRequest": {"type": "object", "properties": {"username": {"type": "string"}, "confirmation_code": {"type": "string"}}},
        "tokenResponse": {"type": "object", "properties": {"access": {"type": "string"}}},
        "user": {"type": "object", "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "first_name": {"type": "string"}, "last_name": {"type": "string"}, "bio": {"type": "string"}, "role": {"type": "string", "enum": ["user", "moderator", "admin"]}}},
        "taxon": {"type": "object", "properties": {"name": {"type": "string"}, "slug": {"type": "string"}}},
        "title": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "year": {"type": "integer"}, "rating": {"type": "integer", "x-nullable": true}, "description": {"type": "string"}, "genre": {"type": "array", "items": {"$ref": "#/definitions/taxon"}}, "category": {"$ref": "#/definitions/taxon"}}},
        "review": {"type": "object", "properties": {"id": {"type": "integer"}, "text": {"type": "string"}, "author": {"type": "string"}, "score": {"type": "integer", "minimum": 1, "maximum": 10}, "pub_date": {"type": "string", "format": "date-time"}}},
        "comment": {"type": "object", "properties": {"id": {"type": "integer"}, "text": {"type": "string"}, "author": {"type": "string"}, "pub_date": {"type": "string", "format": "date-time"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "YaMDb API",
	Description:      "Reviews of films, books and music with passwordless signup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
