// Package docs registers the OpenAPI document served by the Swagger UI route.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "VOSEM INT'L Finance"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/donations/verify": {
            "post": {
                "tags": ["Donations"],
                "summary": "Verify a donation payment",
                "operationId": "verifyDonation",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.VerifyDonationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.VerifyDonationResponse"}},
                    "400": {"description": "Missing reference, or gateway reported non-success", "schema": {"$ref": "#/definitions/handlers.VerifyDonationResponse"}},
                    "500": {"description": "Missing payment key, or verification call failed", "schema": {"$ref": "#/definitions/handlers.VerifyDonationResponse"}}
                }
            }
        },
        "/donations": {
            "get": {
                "tags": ["Donations"],
                "summary": "List donations (paginated)",
                "operationId": "listDonations",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer", "default": 1},
                    {"name": "page_size", "in": "query", "type": "integer", "default": 20}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListDonationsResponse"}},
                    "304": {"description": "Not Modified"},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/donations/{reference}": {
            "get": {
                "tags": ["Donations"],
                "summary": "Fetch a recorded donation",
                "operationId": "getDonation",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "reference", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Donation"}},
                    "404": {"description": "Donation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/donations/{reference}/qr": {
            "get": {
                "tags": ["Donations"],
                "summary": "Receipt QR code",
                "operationId": "donationReceiptQR",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "reference", "in": "path", "type": "string", "required": true},
                    {"name": "size", "in": "query", "type": "integer", "default": 256}
                ],
                "responses": {
                    "200": {"description": "PNG image"},
                    "404": {"description": "Donation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/sermons/summary": {
            "post": {
                "tags": ["Sermons"],
                "summary": "Summarize a sermon transcript",
                "operationId": "summarizeSermon",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.SummarizeSermonRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SummarizeSermonResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Summarizer not configured", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Donation": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "userId": {"type": "string"},
                "amount": {"type": "integer"},
                "currency": {"type": "string"},
                "purpose": {"type": "string"},
                "status": {"type": "string"},
                "donorName": {"type": "string"},
                "donorEmail": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.VerifyDonationRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string", "example": "VOSEM-1700000000000"}
            }
        },
        "handlers.VerifyDonationResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "Payment verified and recorded successfully."},
                "data": {"type": "object"}
            }
        },
        "handlers.ListDonationsResponse": {
            "type": "object",
            "properties": {
                "donations": {"type": "array", "items": {"$ref": "#/definitions/domain.Donation"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "handlers.SummarizeSermonRequest": {
            "type": "object",
            "required": ["sermon_id"],
            "properties": {
                "sermon_id": {"type": "string", "example": "2026-08-30-sunday-service"},
                "title": {"type": "string"},
                "transcript": {"type": "string"}
            }
        },
        "handlers.SummarizeSermonResponse": {
            "type": "object",
            "properties": {
                "sermon_id": {"type": "string"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "cached": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Giving Backend API",
	Description:      "Donation verification, receipts, and sermon summaries for the VOSEM giving platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
