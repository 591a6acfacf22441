package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the article API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>college-news API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the article API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "college-news", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Blog": { "type": "object", "properties": {
        "id": {"type":"integer"}, "title": {"type":"string"}, "content": {"type":"string"}, "author": {"type":"string"},
        "category": {"type":"string","enum":["events","achievements","research"]},
        "attachment_url": {"type":"string","nullable":true}, "attachment_type": {"type":"string","nullable":true},
        "created_at": {"type":"string","format":"date-time"}, "updated_at": {"type":"string","format":"date-time"} } },
      "BlogForm": { "type": "object", "required": ["title","content","author"], "properties": {
        "title": {"type":"string"}, "content": {"type":"string"}, "author": {"type":"string"}, "category": {"type":"string"},
        "keepAttachment": {"type":"string"}, "attachment": {"type":"string","format":"binary"} } }
    }
  },
  "paths": {
    "/api/login": {
      "post": {
        "summary": "Exchange admin credentials for a session token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token returned" }, "400": { "description": "missing fields" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/me": {
      "get": { "summary": "Claims of the presented token", "security": [{"bearer": []}], "responses": { "200": { "description": "claims" }, "401": { "description": "no token" }, "403": { "description": "invalid token" } } }
    },
    "/api/blogs": {
      "get": {
        "summary": "List blogs",
        "parameters": [
          {"name":"search","in":"query","schema":{"type":"string"}},
          {"name":"category","in":"query","schema":{"type":"string"}},
          {"name":"sort","in":"query","schema":{"type":"string","enum":["created_at","updated_at","title","author"]}},
          {"name":"order","in":"query","schema":{"type":"string","enum":["asc","desc"]}}
        ],
        "responses": { "200": { "description": "array of blogs" } }
      },
      "post": {
        "summary": "Create a blog",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/BlogForm"} } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" }, "401": { "description": "no token" }, "403": { "description": "invalid token" } }
      }
    },
    "/api/blogs/category/{category}": {
      "get": { "summary": "List blogs in a category", "parameters": [{"name":"category","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "array of blogs" } } }
    },
    "/api/blogs/{id}": {
      "get": { "summary": "Get a blog", "responses": { "200": { "description": "blog" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a blog", "security": [{"bearer": []}], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/BlogForm"} } } }, "responses": { "200": { "description": "updated" }, "400": { "description": "validation failed" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a blog and its attachment", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/uploads/{name}": {
      "get": { "summary": "Download a stored attachment", "responses": { "200": { "description": "file bytes" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
