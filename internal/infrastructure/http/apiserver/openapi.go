package apiserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler provides OpenAPI documentation endpoints
type OpenAPIHandler struct {
	logger   *zap.Logger
	specYAML []byte
	specJSON []byte
}

// NewOpenAPIHandler creates a new OpenAPI handler. The JSON form is
// converted from the embedded YAML once.
func NewOpenAPIHandler(logger *zap.Logger) *OpenAPIHandler {
	h := &OpenAPIHandler{logger: logger, specYAML: openAPISpec}

	specJSON, err := yamlToJSON(openAPISpec)
	if err != nil {
		logger.Error("Failed to convert OpenAPI spec to JSON", zap.Error(err))
	}
	h.specJSON = specJSON
	return h
}

// RegisterRoutes registers the documentation routes
func (h *OpenAPIHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/openapi.yaml", h.ServeOpenAPISpec)
	r.GET("/openapi.json", h.ServeOpenAPIJSON)
	r.GET("/docs", h.ServeSwaggerUI)
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", h.specYAML)
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(c *gin.Context) {
	if h.specJSON == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OpenAPI spec not available"})
		return
	}
	c.Data(http.StatusOK, "application/json", h.specJSON)
}

// ServeSwaggerUI serves a Swagger UI page for the spec
func (h *OpenAPIHandler) ServeSwaggerUI(c *gin.Context) {
	// the UI is loaded from a CDN, so relax the API's default-src 'none'
	c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' https://unpkg.com; img-src 'self' data:")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(swaggerPage, "/api/v1/openapi.yaml")))
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Cookbook API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: %q, dom_id: "#swagger-ui", deepLinking: true });
    };
  </script>
</body>
</html>`

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
