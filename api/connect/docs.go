// Package connect registers the OpenAPI document for the pagelink HTTP API.
// Hand-maintained; regenerate with `swag init` once the build pipeline runs it.
package connect

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": ["http", "https"],
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Operator session token minted by the host CRM. Format: \"Bearer {token}\"."
        }
    },
    "paths": {
        "/api/facebook/get-manageable-pages": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Facebook"],
                "summary": "List Manageable Facebook Pages",
                "description": "Exchanges a short-lived user access token for a long-lived one, then lists the Facebook Pages the user administers together with their page-scoped tokens.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{
                    "name": "body",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/connectsdk.PagesRequest"}
                }],
                "responses": {
                    "200": {"description": "pages (may be empty)", "schema": {"$ref": "#/definitions/connectsdk.PagesResponse"}},
                    "400": {"description": "missing fields", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "500": {"description": "misconfigured or upstream failure", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}}
                }
            }
        },
        "/api/facebook/store-page-token": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Facebook"],
                "summary": "Store Page Access Token",
                "description": "Encrypts a page-scoped access token and persists it. Fails with 409 when the page is already connected.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{
                    "name": "body",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/connectsdk.StoreTokenRequest"}
                }],
                "responses": {
                    "200": {"description": "stored", "schema": {"$ref": "#/definitions/connectsdk.StoreTokenResponse"}},
                    "400": {"description": "missing fields", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "409": {"description": "page already connected", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "500": {"description": "storage failure", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}}
                }
            }
        },
        "/api/facebook/page-tokens": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Facebook"],
                "summary": "List Connected Pages",
                "description": "Returns all stored page connections. Tokens stay encrypted at rest and are not included.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/connectsdk.PageTokenRecord"}}},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "500": {"description": "storage failure", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}}
                }
            }
        },
        "/api/facebook/page-tokens/{pageId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Facebook"],
                "summary": "Disconnect Page",
                "description": "Deletes the stored token record for a page. The token is not revoked at the provider.",
                "produces": ["application/json"],
                "parameters": [{
                    "name": "pageId",
                    "in": "path",
                    "required": true,
                    "type": "string",
                    "description": "Facebook page id"
                }],
                "responses": {
                    "204": {"description": "disconnected"},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "404": {"description": "page not connected", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}},
                    "500": {"description": "storage failure", "schema": {"$ref": "#/definitions/connectsdk.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/connectsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/connectsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/connectsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "connectsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "connectsdk.PagesRequest": {
            "type": "object",
            "required": ["facebookUserId", "shortLivedUserAccessToken"],
            "properties": {
                "facebookUserId": {"type": "string"},
                "shortLivedUserAccessToken": {"type": "string"}
            }
        },
        "connectsdk.PagesResponse": {
            "type": "object",
            "properties": {
                "pages": {"type": "array", "items": {"$ref": "#/definitions/connectsdk.ManageablePage"}},
                "message": {"type": "string"}
            }
        },
        "connectsdk.ManageablePage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "accessToken": {"type": "string"},
                "category": {"type": "string"},
                "tasks": {"type": "array", "items": {"type": "string"}}
            }
        },
        "connectsdk.StoreTokenRequest": {
            "type": "object",
            "required": ["pageId", "pageName", "pageAccessToken"],
            "properties": {
                "pageId": {"type": "string"},
                "pageName": {"type": "string"},
                "pageAccessToken": {"type": "string"}
            }
        },
        "connectsdk.StoreTokenResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "pageId": {"type": "string"},
                "tokenId": {"type": "string"}
            }
        },
        "connectsdk.PageTokenRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pageId": {"type": "string"},
                "pageName": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "connectsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/connectsdk.HealthChecks"}
            }
        },
        "connectsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Pagelink Facebook Integration API",
	Description:      "Facebook Page connection service for the recruiting CRM. Exchanges short-lived user tokens for page-scoped access tokens and stores them encrypted at rest.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
