// Package docs exposes the generated OpenAPI definition for the Swagger UI.
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
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/healthz": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scenes": {
            "get": {
                "tags": ["scenes"],
                "summary": "List ingested scenes",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "tags": ["scenes"],
                "summary": "Ingest a raw scene",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "source_url", "in": "formData"},
                    {"type": "string", "name": "product_id", "in": "formData"},
                    {"type": "string", "name": "acquisition_time", "in": "formData"},
                    {"type": "string", "name": "processing_level", "in": "formData"},
                    {"type": "string", "name": "bbox", "in": "formData"},
                    {"type": "number", "name": "cloud_cover", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/scenes/{id}": {
            "get": {
                "tags": ["scenes"],
                "summary": "Get a scene",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["scenes"],
                "summary": "Delete a scene",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/scenes/{id}/provenance": {
            "get": {
                "tags": ["scenes"],
                "summary": "Get scene provenance",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scenes/{id}/download": {
            "get": {
                "tags": ["scenes"],
                "summary": "Presign a scene download",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scenes/{id}/verify": {
            "post": {
                "tags": ["scenes"],
                "summary": "Verify scene integrity",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scenes/{id}/archive": {
            "post": {
                "tags": ["scenes"],
                "summary": "Archive a scene",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/scenes/{id}/restore": {
            "post": {
                "tags": ["scenes"],
                "summary": "Restore an archived scene",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/scenes/{id}/artifacts": {
            "get": {
                "tags": ["artifacts"],
                "summary": "List a scene's artifacts",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/artifacts": {
            "post": {
                "consumes": ["multipart/form-data"],
                "tags": ["artifacts"],
                "summary": "Register a derived artifact",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "scene_id", "in": "formData", "required": true},
                    {"type": "string", "name": "job_id", "in": "formData"},
                    {"type": "string", "name": "kind", "in": "formData", "required": true},
                    {"type": "number", "name": "stats_min", "in": "formData", "required": true},
                    {"type": "number", "name": "stats_mean", "in": "formData", "required": true},
                    {"type": "number", "name": "stats_max", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/artifacts/{id}": {
            "get": {
                "tags": ["artifacts"],
                "summary": "Get an artifact",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/artifacts/{id}/download": {
            "get": {
                "tags": ["artifacts"],
                "summary": "Presign an artifact download",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/jobs": {
            "get": {
                "tags": ["jobs"],
                "summary": "List jobs",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["jobs"],
                "summary": "Create a monitoring job",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "tags": ["jobs"],
                "summary": "Get a job",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/jobs/{id}/pack": {
            "get": {
                "tags": ["packs"],
                "summary": "Get a job's latest pack",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["packs"],
                "summary": "Assemble an evidence pack",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/packs/{id}": {
            "get": {
                "tags": ["packs"],
                "summary": "Get an evidence pack",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/packs/{id}/download": {
            "get": {
                "tags": ["packs"],
                "summary": "Presign a pack download",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/packs/{id}/verify": {
            "post": {
                "tags": ["packs"],
                "summary": "Verify an evidence pack",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gaia Evidence API",
	Description:      "Evidence-grade environmental monitoring platform",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
