package api

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI builds the OpenAPI 3 description of the JSON API.
func OpenAPI() *openapi3.T {
	userSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("created_at", openapi3.NewDateTimeSchema())
	userSchema.Required = []string{"id", "username", "email", "created_at"}

	itemSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("user_id", openapi3.NewInt64Schema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema())
	itemSchema.Required = []string{"id", "user_id", "title", "created_at", "updated_at"}

	itemInput := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(200)).
		WithProperty("description", openapi3.NewStringSchema().WithMaxLength(2000))
	itemInput.Required = []string{"title"}

	registerInput := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema().WithMinLength(3).WithMaxLength(32).WithPattern(`^[A-Za-z0-9_-]+$`)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email").WithMaxLength(254)).
		WithProperty("password", openapi3.NewStringSchema().WithMinLength(5).WithMaxLength(128))
	registerInput.Required = []string{"username", "email", "password"}

	loginInput := openapi3.NewObjectSchema().
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema())
	loginInput.Required = []string{"username", "password"}

	tokenSchema := openapi3.NewObjectSchema().
		WithProperty("token", openapi3.NewStringSchema()).
		WithProperty("expires_at", openapi3.NewDateTimeSchema())
	tokenSchema.Required = []string{"token", "expires_at"}

	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("fields", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))
	errorSchema.Required = []string{"error"}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "crudapp",
			Description: "Owner-scoped item management with token authentication.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{{URL: "/api"}},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"User":          openapi3.NewSchemaRef("", userSchema),
				"Item":          openapi3.NewSchemaRef("", itemSchema),
				"ItemInput":     openapi3.NewSchemaRef("", itemInput),
				"RegisterInput": openapi3.NewSchemaRef("", registerInput),
				"LoginInput":    openapi3.NewSchemaRef("", loginInput),
				"Token":         openapi3.NewSchemaRef("", tokenSchema),
				"Error":         openapi3.NewSchemaRef("", errorSchema),
			},
			SecuritySchemes: openapi3.SecuritySchemes{
				"bearerAuth": &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
		Paths: openapi3.NewPaths(),
	}

	ref := func(name string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, doc.Components.Schemas[name].Value)
	}
	itemList := openapi3.NewArraySchema()
	itemList.Items = ref("Item")
	items := openapi3.NewSchemaRef("", itemList)

	secured := openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate("bearerAuth"))
	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())}

	op := func(id, summary string, body *openapi3.SchemaRef, responses map[int]response, secure bool) *openapi3.Operation {
		o := openapi3.NewOperation()
		o.OperationID = id
		o.Summary = summary
		if body != nil {
			o.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(body),
			}
		}
		if secure {
			o.Security = secured
			responses[http.StatusUnauthorized] = response{"Not authenticated", ref("Error")}
		}

		opts := make([]openapi3.NewResponsesOption, 0, len(responses))
		for code, resp := range responses {
			r := openapi3.NewResponse().WithDescription(resp.description)
			if resp.schema != nil {
				r = r.WithJSONSchemaRef(resp.schema)
			}
			opts = append(opts, openapi3.WithStatus(code, &openapi3.ResponseRef{Value: r}))
		}
		o.Responses = openapi3.NewResponses(opts...)
		return o
	}
	errResp := func(desc string) response { return response{desc, ref("Error")} }

	doc.Paths.Set("/register", &openapi3.PathItem{
		Post: op("register", "Create an account", ref("RegisterInput"), map[int]response{
			201: {"Account created", ref("User")},
			400: errResp("Invalid input"),
			409: errResp("Username or email taken"),
		}, false),
	})
	doc.Paths.Set("/login", &openapi3.PathItem{
		Post: op("login", "Exchange credentials for a token", ref("LoginInput"), map[int]response{
			200: {"Token issued, also set as the token cookie", ref("Token")},
			400: errResp("Invalid input"),
			401: errResp("Invalid credentials"),
		}, false),
	})
	doc.Paths.Set("/logout", &openapi3.PathItem{
		Post: op("logout", "Clear the token cookie", nil, map[int]response{
			204: {"Cookie cleared", nil},
		}, false),
	})
	doc.Paths.Set("/me", &openapi3.PathItem{
		Get: op("me", "Current user", nil, map[int]response{
			200: {"The authenticated user", ref("User")},
		}, true),
	})
	doc.Paths.Set("/items", &openapi3.PathItem{
		Get: op("listItems", "List own items, newest first", nil, map[int]response{
			200: {"Items", items},
		}, true),
		Post: op("createItem", "Create an item", ref("ItemInput"), map[int]response{
			201: {"Item created", ref("Item")},
			400: errResp("Invalid input"),
		}, true),
	})

	byID := &openapi3.PathItem{
		Parameters: openapi3.Parameters{idParam},
		Get: op("getItem", "Fetch an item", nil, map[int]response{
			200: {"The item", ref("Item")},
			400: errResp("Invalid id"),
			404: errResp("No such item for this user"),
		}, true),
		Put: op("updateItem", "Replace an item's title and description", ref("ItemInput"), map[int]response{
			200: {"Updated item", ref("Item")},
			400: errResp("Invalid input"),
			404: errResp("No such item for this user"),
		}, true),
		Delete: op("deleteItem", "Delete an item", nil, map[int]response{
			204: {"Deleted", nil},
			400: errResp("Invalid id"),
			404: errResp("No such item for this user"),
		}, true),
	}
	doc.Paths.Set("/items/{id}", byID)

	return doc
}

type response struct {
	description string
	schema      *openapi3.SchemaRef
}

var (
	specOnce sync.Once
	specJSON []byte
	specErr  error
)

// OpenAPIJSON serves the OpenAPI document.
func OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	specOnce.Do(func() {
		specJSON, specErr = OpenAPI().MarshalJSON()
	})
	if specErr != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(specJSON)
}

// DocsPage serves an interactive explorer for the OpenAPI document.
func DocsPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsHTML))
}

const docsHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>crudapp API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.onload = function () {
  SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
};
</script>
</body>
</html>
`
