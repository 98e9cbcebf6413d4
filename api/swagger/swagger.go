package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Colegio API",
        "description": "School administration backend: roster, curricula, grade reports, leaves, payments and parent notifications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Students", "description": "Roster management"},
        {"name": "Courses", "description": "Course sections"},
        {"name": "Curricula", "description": "Yearly academic plans"},
        {"name": "GradeReports", "description": "Libretas"},
        {"name": "Leaves", "description": "Absence requests"},
        {"name": "Payments", "description": "Tuition payments"},
        {"name": "Users", "description": "Accounts"},
        {"name": "Notifications", "description": "Per-user inbox"},
        {"name": "Events", "description": "Institutional events"},
        {"name": "Meetings", "description": "Parent meetings"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
