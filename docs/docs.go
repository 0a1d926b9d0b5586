// Package docs holds the OpenAPI description served under /swagger.
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
        "/api/scraping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Latest job documents",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List jobs",
                "parameters": [
                    {"type": "string", "description": "Text contained in the title or a seed URL", "name": "q", "in": "query"},
                    {"type": "string", "default": "recency", "description": "recency or matches", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 1, "description": "1-based page", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size, 1..100", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs/compare": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Compare jobs side by side",
                "parameters": [
                    {"type": "string", "description": "Text contained in the title or a seed URL", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/api/v1/jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Job summary",
                "parameters": [
                    {"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs/{id}/entries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Entry table of a job",
                "parameters": [
                    {"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Text contained in the entry URL", "name": "q", "in": "query"},
                    {"type": "string", "default": "success", "description": "success or error", "name": "mode", "in": "query"},
                    {"type": "string", "description": "Comma separated keywords that must be found", "name": "require", "in": "query"},
                    {"type": "integer", "description": "1-based page", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size, 1..100", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs/{id}/tree": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "URL hierarchy of a job",
                "parameters": [
                    {"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Root URL", "name": "base", "in": "query"},
                    {"type": "string", "description": "Path search", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/jobs/{id}/export": {
            "get": {
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["jobs"],
                "summary": "Download the filtered entries of a job",
                "parameters": [
                    {"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "success", "description": "success or error", "name": "mode", "in": "query"},
                    {"type": "string", "description": "Text contained in the entry URL", "name": "q", "in": "query"},
                    {"type": "string", "description": "Comma separated keywords that must be found", "name": "require", "in": "query"},
                    {"type": "string", "default": "csv", "description": "csv or xlsx", "name": "format", "in": "query"},
                    {"type": "string", "description": "Language of the Yes/No cells", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Global statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/api/v1/scrape": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scrape"],
                "summary": "Start a site scrape",
                "parameters": [
                    {"description": "Scrape configuration", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wizard.ScrapeForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/google-search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Forward a Google search query string",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Start a Google search job",
                "parameters": [
                    {"description": "Search configuration", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wizard.SearchForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/presets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "List saved presets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/api/v1/presets/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Get a preset",
                "parameters": [{"type": "string", "description": "Preset name", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Create or replace a preset",
                "parameters": [
                    {"type": "string", "description": "Preset name", "name": "name", "in": "path", "required": true},
                    {"description": "Preset", "name": "preset", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Preset"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Delete a preset",
                "parameters": [{"type": "string", "description": "Preset name", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Simulated sign in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wizard.LoginForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Simulated sign up",
                "parameters": [
                    {"description": "Account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wizard.RegisterForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Simulated password recovery",
                "parameters": [
                    {"description": "Account email", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wizard.ForgotPasswordForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "wizard.ForgotPasswordForm": {
            "type": "object",
            "properties": {
                "email": {"type": "string"}
            }
        },
        "models.Category": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Preset": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "urls": {"type": "array", "items": {"type": "string"}},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}},
                "updated_at": {"type": "string"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "wizard.LoginForm": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            }
        },
        "wizard.RegisterForm": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirm_password": {"type": "string"}
            }
        },
        "wizard.ScrapeForm": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "urls": {"type": "array", "items": {"type": "string"}},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "max_depth": {"type": "integer"}
            }
        },
        "wizard.SearchForm": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "results_count": {"type": "integer"},
                "google_domain": {"type": "string"},
                "language": {"type": "string"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Buff Comply Dashboard API",
	Description:      "Browse, filter and export compliance scraping results, and submit new scraping jobs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
