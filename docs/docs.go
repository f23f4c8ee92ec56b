// Package docs holds the statically authored swagger template for the
// admin API, in the shape swag init would otherwise generate from the
// @-annotations in internal/httpapi.
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
        "/blocks/{symbol}": {
            "get": {
                "produces": ["application/json"],
                "summary": "List contiguous diff blocks for a symbol",
                "parameters": [
                    {
                        "type": "string",
                        "description": "canonical symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/symbols": {
            "get": {
                "produces": ["application/json"],
                "summary": "List ingested symbols",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds the exported swagger spec, registered with the
// swag package at init so ginSwagger.WrapHandler can serve it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LOB Keeper Admin API",
	Description:      "Read-only inspection endpoints for the order book ingestion and replay service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
