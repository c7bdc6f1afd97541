// Package docs holds the OpenAPI document served at /api/swagger.
// Regenerate it with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@farmconnect.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/cart": {
            "get": {
                "tags": [
                    "cart"
                ],
                "summary": "Get cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "401": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "cart"
                ],
                "summary": "Add to cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "401": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CartItemInput"
                        }
                    }
                ]
            }
        },
        "/cart/clear": {
            "delete": {
                "tags": [
                    "cart"
                ],
                "summary": "Clear cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/cart/{id}": {
            "get": {
                "tags": [
                    "cart"
                ],
                "summary": "Get cart item",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "cart"
                ],
                "summary": "Update cart item",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.CartItemUpdate"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "cart"
                ],
                "summary": "Remove cart item",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/posts": {
            "get": {
                "tags": [
                    "posts"
                ],
                "summary": "List all posts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "categoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "subcategoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "userId",
                        "in": "query"
                    }
                ]
            }
        },
        "/posts/farm": {
            "get": {
                "tags": [
                    "posts"
                ],
                "summary": "List farm posts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "categoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "subcategoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "userId",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "tags": [
                    "posts"
                ],
                "summary": "Create farm post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.FarmPostInput"
                        }
                    }
                ]
            }
        },
        "/posts/farm/{id}": {
            "get": {
                "tags": [
                    "posts"
                ],
                "summary": "Get farm post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "posts"
                ],
                "summary": "Update farm post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.FarmPostUpdate"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "posts"
                ],
                "summary": "Delete farm post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/posts/store": {
            "get": {
                "tags": [
                    "posts"
                ],
                "summary": "List store posts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "categoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "subcategoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "region",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "userId",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "tags": [
                    "posts"
                ],
                "summary": "Create store post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.StorePostInput"
                        }
                    }
                ]
            }
        },
        "/posts/store/{id}": {
            "get": {
                "tags": [
                    "posts"
                ],
                "summary": "Get store post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "posts"
                ],
                "summary": "Update store post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.StorePostUpdate"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "posts"
                ],
                "summary": "Delete store post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/profile": {
            "get": {
                "tags": [
                    "profile"
                ],
                "summary": "Get my profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "profile"
                ],
                "summary": "Create profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "409": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.UserProfileInput"
                        }
                    }
                ]
            }
        },
        "/profile/{id}": {
            "get": {
                "tags": [
                    "profile"
                ],
                "summary": "Get profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "profile"
                ],
                "summary": "Update profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.UserProfileUpdate"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "profile"
                ],
                "summary": "Delete profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/profile/farm_me": {
            "get": {
                "tags": [
                    "profile"
                ],
                "summary": "Get my farm profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "profile"
                ],
                "summary": "Create or update my farm profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.FarmProfileInput"
                        }
                    }
                ]
            }
        },
        "/profile/store": {
            "post": {
                "tags": [
                    "profile"
                ],
                "summary": "Create or update my store profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.StoreProfileInput"
                        }
                    }
                ]
            }
        },
        "/profile/store/{userId}": {
            "get": {
                "tags": [
                    "profile"
                ],
                "summary": "Get store profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "userId",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/review": {
            "post": {
                "tags": [
                    "reviews"
                ],
                "summary": "Create review",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.ReviewInput"
                        }
                    }
                ]
            }
        },
        "/review/user/{userId}": {
            "get": {
                "tags": [
                    "reviews"
                ],
                "summary": "List reviews of a user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "userId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query"
                    }
                ]
            }
        },
        "/review/{id}": {
            "get": {
                "tags": [
                    "reviews"
                ],
                "summary": "Get review",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "patch": {
                "tags": [
                    "reviews"
                ],
                "summary": "Update review",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.ReviewUpdate"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "reviews"
                ],
                "summary": "Delete review",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "403": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/review/{id}/helpful": {
            "patch": {
                "tags": [
                    "reviews"
                ],
                "summary": "Mark review helpful",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "400": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    },
                    "404": {
                        "description": "envelope",
                        "schema": {
                            "$ref": "#/definitions/models.Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "models.Envelope": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "message": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/models.Pagination"
                }
            }
        },
        "models.Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "limit": {
                    "type": "integer"
                },
                "totalDocs": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                },
                "hasNextPage": {
                    "type": "boolean"
                },
                "hasPrevPage": {
                    "type": "boolean"
                }
            }
        },
        "models.CartItemInput": {
            "type": "object"
        },
        "models.CartItemUpdate": {
            "type": "object"
        },
        "models.FarmPostInput": {
            "type": "object"
        },
        "models.FarmPostUpdate": {
            "type": "object"
        },
        "models.StorePostInput": {
            "type": "object"
        },
        "models.StorePostUpdate": {
            "type": "object"
        },
        "models.UserProfileInput": {
            "type": "object"
        },
        "models.UserProfileUpdate": {
            "type": "object"
        },
        "models.FarmProfileInput": {
            "type": "object"
        },
        "models.StoreProfileInput": {
            "type": "object"
        },
        "models.ReviewInput": {
            "type": "object"
        },
        "models.ReviewUpdate": {
            "type": "object"
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Farm Connect API",
	Description:      "Marketplace API for farm produce and agricultural store listings, carts, reviews and profiles",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
