package models

import "fmt"

// SwaggerDoc is the machine-readable interface descriptor of a scoring
// service, generated from its statically declared schema for external
// application integration.
type SwaggerDoc struct {
	Swagger     string                     `json:"swagger"`
	Info        SwaggerInfo                `json:"info"`
	BasePath    string                     `json:"basePath"`
	Consumes    []string                   `json:"consumes"`
	Produces    []string                   `json:"produces"`
	Paths       map[string]SwaggerPathItem `json:"paths"`
	Definitions map[string]SwaggerObject   `json:"definitions"`
}

type SwaggerInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type SwaggerPathItem struct {
	Post *SwaggerOperation `json:"post,omitempty"`
}

type SwaggerOperation struct {
	OperationID string                     `json:"operationId"`
	Parameters  []SwaggerParameter         `json:"parameters"`
	Responses   map[string]SwaggerResponse `json:"responses"`
}

type SwaggerParameter struct {
	Name     string        `json:"name"`
	In       string        `json:"in"`
	Required bool          `json:"required"`
	Schema   SwaggerSchema `json:"schema"`
}

type SwaggerResponse struct {
	Description string        `json:"description"`
	Schema      SwaggerSchema `json:"schema,omitempty"`
}

type SwaggerSchema struct {
	Ref string `json:"$ref,omitempty"`
}

type SwaggerObject struct {
	Type       string                     `json:"type"`
	Required   []string                   `json:"required,omitempty"`
	Properties map[string]SwaggerProperty `json:"properties"`
}

type SwaggerProperty struct {
	Type string `json:"type"`
}

// InterfaceDescriptor renders the swagger document for the service's score
// operation from its declared schema.
func (s *Service) InterfaceDescriptor() *SwaggerDoc {
	scorePath := fmt.Sprintf("/api/v1/services/%s/%s/score", s.Name, s.Version)

	return &SwaggerDoc{
		Swagger: "2.0",
		Info: SwaggerInfo{
			Title:       s.Name,
			Version:     s.Version,
			Description: s.Description,
		},
		BasePath: "/",
		Consumes: []string{"application/json"},
		Produces: []string{"application/json"},
		Paths: map[string]SwaggerPathItem{
			scorePath: {
				Post: &SwaggerOperation{
					OperationID: "score",
					Parameters: []SwaggerParameter{
						{
							Name:     "record",
							In:       "body",
							Required: true,
							Schema:   SwaggerSchema{Ref: "#/definitions/ScoreRequest"},
						},
					},
					Responses: map[string]SwaggerResponse{
						"200": {
							Description: "Prediction for the submitted record",
							Schema:      SwaggerSchema{Ref: "#/definitions/ScoreResponse"},
						},
					},
				},
			},
		},
		Definitions: map[string]SwaggerObject{
			"ScoreRequest":  schemaObject(s.Schema.Input),
			"ScoreResponse": schemaObject(s.Schema.Output),
		},
	}
}

func schemaObject(fields []FieldSpec) SwaggerObject {
	obj := SwaggerObject{
		Type:       "object",
		Required:   make([]string, 0, len(fields)),
		Properties: make(map[string]SwaggerProperty, len(fields)),
	}
	for _, f := range fields {
		obj.Required = append(obj.Required, f.Name)
		obj.Properties[f.Name] = SwaggerProperty{Type: f.Type.jsonType()}
	}
	return obj
}
