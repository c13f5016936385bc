package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Catalog API",
        "description": "Course listing, dashboard and course detail screens backed by the catalog database",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Session", "description": "Active student selection"},
        {"name": "Courses", "description": "Course listing, likes and course detail"},
        {"name": "Dashboard", "description": "Student enrollments joined with courses"}
    ],
    "paths": {
        "/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Active student and roster",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session/current": {
            "put": {
                "tags": ["Session"],
                "summary": "Switch the active student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SwitchStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course listing for the active student",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No active student, or the active student kept changing while loading", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data service failure; data carries the last known view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/live": {
            "get": {
                "tags": ["Courses"],
                "summary": "Live course listing",
                "description": "Upgrades to a websocket and pushes the course listing view after every reload.",
                "responses": {
                    "101": {"description": "Switching protocols", "schema": {"$ref": "#/definitions/CourseListingView"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course detail including syllabus",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/like": {
            "post": {
                "tags": ["Courses"],
                "summary": "Like or unlike a course as the active student",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No active student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Mutation failed; data carries the reloaded view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/{studentId}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Student dashboard with enrolled courses",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "studentId", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data service failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/{studentId}/enrollments/{enrollmentId}/complete": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Mark an enrollment as completed",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "studentId", "type": "string", "required": true},
                    {"in": "path", "name": "enrollmentId", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Enrollment not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data service failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SwitchStudentRequest": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"}
            }
        },
        "CourseCard": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "instructor": {"type": "string"},
                "thumbnail": {"type": "string"},
                "likeCount": {"type": "integer"},
                "liked": {"type": "boolean"}
            }
        },
        "CourseListingView": {
            "type": "object",
            "properties": {
                "loading": {"type": "boolean"},
                "studentId": {"type": "string"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/CourseCard"}},
                "message": {"type": "string"},
                "loadedAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
