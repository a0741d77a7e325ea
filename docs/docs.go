// Package docs registers the OpenAPI document of the HTTP API with swag.
// Regenerate with `swag init -g cmd/creditrisk/docs.go -o docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Backend readiness summary",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Per-backend state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/backends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Configured backends",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BackendsResponse"}}}
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Model files in the models directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/inference/{backend}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inference"],
                "summary": "Assess a borrower with one backend",
                "parameters": [
                    {"type": "string", "description": "Backend name", "name": "backend", "in": "path", "required": true},
                    {"description": "Borrower record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreditRiskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/inference/parallel": {
            "post": {
                "description": "Runs every backend (or those named in ?backends=a,b) concurrently and waits for all of them.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inference"],
                "summary": "Assess a borrower with several backends at once",
                "parameters": [
                    {"type": "string", "description": "Comma-separated backend names", "name": "backends", "in": "query"},
                    {"description": "Borrower record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreditRiskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ParallelResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ParallelResponse"}}
                }
            }
        },
        "/inference/stream": {
            "post": {
                "description": "Emits one start line per backend, partial lines with each backend's accumulated text, a done line per backend and a final complete line.",
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "tags": ["inference"],
                "summary": "Parallel assessment as an NDJSON stream",
                "parameters": [
                    {"type": "string", "description": "Comma-separated backend names", "name": "backends", "in": "query"},
                    {"description": "Borrower record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreditRiskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StreamEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.CreditRiskRequest": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 32},
                "occupation": {"type": "string", "example": "Journalist"},
                "annual_income": {"type": "number", "example": 33470.43},
                "outstanding_debt": {"type": "number", "example": 1318.49},
                "credit_utilization": {"type": "number", "example": 26.8},
                "payment_behavior": {"type": "string", "example": "Low_spent_Large_value_payments"}
            }
        },
        "types.ModelResponse": {
            "type": "object",
            "properties": {
                "model_name": {"type": "string", "example": "lora"},
                "display_name": {"type": "string"},
                "formatted_input": {"type": "string"},
                "response": {"type": "string"},
                "processing_time": {"type": "number", "example": 4.21},
                "status": {"type": "string", "example": "ok"},
                "error": {"type": "string"},
                "label": {"type": "string", "example": "Standard"},
                "finish_reason": {"type": "string", "example": "stop"}
            }
        },
        "types.ParallelResponse": {
            "type": "object",
            "properties": {
                "dispatch_id": {"type": "string"},
                "results": {"type": "object", "additionalProperties": {"$ref": "#/definitions/types.ModelResponse"}},
                "total_processing_time": {"type": "number", "example": 6.5},
                "succeeded": {"type": "integer", "example": 2}
            }
        },
        "types.StreamEvent": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "partial"},
                "backend": {"type": "string", "example": "qlora"},
                "text": {"type": "string"},
                "result": {"$ref": "#/definitions/types.ModelResponse"},
                "summary": {"$ref": "#/definitions/types.ParallelResponse"},
                "error": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400},
                "field": {"type": "string", "example": "age"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "models_loaded": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "backends": {"type": "integer", "example": 3}
            }
        },
        "types.BackendStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "display_name": {"type": "string"},
                "state": {"type": "string", "example": "ready"},
                "busy": {"type": "boolean"},
                "error": {"type": "string"},
                "load_seconds": {"type": "number"},
                "last_used_unix_ms": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backends": {"type": "array", "items": {"$ref": "#/definitions/types.BackendStatus"}},
                "workers": {"type": "integer"},
                "busy_workers": {"type": "integer"},
                "ready": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.BackendInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "display_name": {"type": "string"},
                "kind": {"type": "string", "example": "llama"},
                "model": {"type": "string"},
                "preset": {"type": "string"}
            }
        },
        "types.BackendsResponse": {
            "type": "object",
            "properties": {"backends": {"type": "array", "items": {"$ref": "#/definitions/types.BackendInfo"}}}
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "backends": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Credit Risk Assessment API",
	Description:      "Runs a borrower record through several fine-tuned language models at once and compares their credit-score answers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
