package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "eGuidance API",
        "description": "Appointment scheduling backend for the student guidance platform",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration, login and OTP verification"},
        {"name": "Appointments", "description": "Booking, availability and lifecycle"},
        {"name": "Users", "description": "Profiles and counselor directory"},
        {"name": "Reports", "description": "Counselor usage statistics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student or counselor account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "responses": {
                    "200": {"description": "Session token"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/otp/request": {
            "post": {
                "tags": ["Auth"],
                "summary": "Request a one-time passcode",
                "responses": {
                    "200": {"description": "Code sent"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/otp/verify": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a passcode for a session token",
                "responses": {
                    "200": {"description": "Session token"},
                    "401": {"description": "Invalid or expired code"}
                }
            }
        },
        "/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List own appointments",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Appointments"}
                }
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "responses": {
                    "201": {"description": "Pending appointment"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Slot conflict"}
                }
            }
        },
        "/appointments/available": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Free slots for a counselor on a date",
                "parameters": [
                    {"name": "counselor_id", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Available and booked slots"}
                }
            }
        },
        "/appointments/{id}": {
            "put": {
                "tags": ["Appointments"],
                "summary": "Move an appointment to another slot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated appointment"},
                    "403": {"description": "Not the owning counselor"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Slot conflict"}
                }
            },
            "delete": {
                "tags": ["Appointments"],
                "summary": "Delete an appointment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not a party"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/appointments/{id}/status": {
            "put": {
                "tags": ["Appointments"],
                "summary": "Advance appointment status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated appointment"},
                    "400": {"description": "Invalid status or transition"},
                    "403": {"description": "Not the owning counselor"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        },
        "/users/counselors": {
            "get": {
                "tags": ["Users"],
                "summary": "List bookable counselors",
                "responses": {
                    "200": {"description": "Counselors"}
                }
            }
        },
        "/reports/weekly": {
            "get": {
                "tags": ["Reports"],
                "summary": "Weekly usage statistics",
                "responses": {
                    "200": {"description": "Usage report"},
                    "403": {"description": "Counselors only"}
                }
            }
        },
        "/reports/monthly": {
            "get": {
                "tags": ["Reports"],
                "summary": "Monthly usage statistics",
                "responses": {
                    "200": {"description": "Usage report"},
                    "403": {"description": "Counselors only"}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a usage report as CSV or PDF",
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Counselors only"}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"type": "object"},
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
