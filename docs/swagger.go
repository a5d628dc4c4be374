// Package docs registers the API description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Workspaces", "description": "Workspace and workspace membership operations"},
        {"name": "Boards", "description": "Board management and board membership operations"},
        {"name": "Lists", "description": "List management operations"},
        {"name": "Cards", "description": "Card operations; creating and moving cards fires automations"},
        {"name": "Labels", "description": "Label management operations"},
        {"name": "Automations", "description": "Automation rules and their execution logs"}
    ],
    "paths": {}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Boardflow API",
	Description:      "Collaborative boards with role-based access and card automations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
