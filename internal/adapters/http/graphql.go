package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/oskargil/crashatlas/internal/core/domain"
)

// filterArgs are shared by every query that accepts the dashboard filter.
var filterArgs = graphql.FieldConfigArgument{
	"year_min":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultYearMin},
	"year_max":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultYearMax},
	"type":           &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.TypeAll},
	"region":         &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	"min_fatalities": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
}

func criteriaFromArgs(args map[string]interface{}) domain.FilterCriteria {
	c := domain.NewFilterCriteria()
	if v, ok := args["year_min"].(int); ok {
		c.YearMin = v
	}
	if v, ok := args["year_max"].(int); ok {
		c.YearMax = v
	}
	if v, ok := args["type"].(string); ok && v != "" {
		c.Type = v
	}
	if v, ok := args["region"].(string); ok {
		c.Region = v
	}
	if v, ok := args["min_fatalities"].(int); ok {
		c.MinFatalities = v
	}
	return c
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	crashType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Crash",
		Fields: graphql.Fields{
			"Location":   &graphql.Field{Type: graphql.String},
			"Year":       &graphql.Field{Type: graphql.Int},
			"Type":       &graphql.Field{Type: graphql.String},
			"Fatalities": &graphql.Field{Type: graphql.Int},
			"Country":    &graphql.Field{Type: graphql.String},
			"Latitude":   &graphql.Field{Type: graphql.Float},
			"Longitude":  &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"location":   &graphql.Field{Type: graphql.String},
			"year":       &graphql.Field{Type: graphql.Int},
			"type":       &graphql.Field{Type: graphql.String},
			"fatalities": &graphql.Field{Type: graphql.Int},
			"country":    &graphql.Field{Type: graphql.String},
			"point":      &graphql.Field{Type: geoPointType},
			"color":      &graphql.Field{Type: graphql.String},
			"size":       &graphql.Field{Type: graphql.Float},
			"popup_key":  &graphql.Field{Type: graphql.String},
		},
	})

	decadeCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DecadeCount",
		Fields: graphql.Fields{
			"decade": &graphql.Field{Type: graphql.Int},
			"count":  &graphql.Field{Type: graphql.Int},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"count":              &graphql.Field{Type: graphql.Int},
			"total_fatalities":   &graphql.Field{Type: graphql.Int},
			"average_fatalities": &graphql.Field{Type: graphql.Float},
			"decades":            &graphql.Field{Type: graphql.NewList(decadeCountType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"crashes": &graphql.Field{
				Type:        graphql.NewList(crashType),
				Description: "Raw crash records passing the filter",
				Args:        filterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dataset.Filtered(criteriaFromArgs(p.Args)), nil
				},
			},
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Plottable markers for the filter (coordinate-less records excluded)",
				Args:        filterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Markers.Markers(p.Context, criteriaFromArgs(p.Args)), nil
				},
			},
			"analytics": &graphql.Field{
				Type:        summaryType,
				Description: "Totals, average fatalities, and the decade histogram for the filter",
				Args:        filterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Analytics.Summarize(p.Context, criteriaFromArgs(p.Args)), nil
				},
			},
			"crashTypes": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct crash types, \"All\" first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dataset.Types(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
