package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
)

// buildSchema creates the GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	routeRowInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RouteRowInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"departure_city": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"arrival_city":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"line_color":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	tileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TileStyle",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"url":         &graphql.Field{Type: graphql.String},
			"attribution": &graphql.Field{Type: graphql.String},
			"max_zoom":    &graphql.Field{Type: graphql.Int},
		},
	})

	curveType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Curve",
		Fields: graphql.Fields{
			"origin":      &graphql.Field{Type: geoPointType},
			"destination": &graphql.Field{Type: geoPointType},
			"points":      &graphql.Field{Type: graphql.Int},
			"path":        &graphql.Field{Type: graphql.NewList(geoPointType)},
			"polyline":    &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	mapRouteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapRoute",
		Fields: graphql.Fields{
			"seq":            &graphql.Field{Type: graphql.Int},
			"departure_city": &graphql.Field{Type: graphql.String},
			"arrival_city":   &graphql.Field{Type: graphql.String},
			"departure":      &graphql.Field{Type: geoPointType},
			"arrival":        &graphql.Field{Type: geoPointType},
			"line_color":     &graphql.Field{Type: graphql.String},
			"polyline":       &graphql.Field{Type: graphql.String},
			"distance_km":    &graphql.Field{Type: graphql.Float},
		},
	})

	droppedType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DroppedRow",
		Fields: graphql.Fields{
			"index":  &graphql.Field{Type: graphql.Int},
			"reason": &graphql.Field{Type: graphql.String},
			"departure_city": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(domain.DroppedRow).Row.DepartureCity, nil
				},
			},
			"arrival_city": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(domain.DroppedRow).Row.ArrivalCity, nil
				},
			},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Map",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"tile_style":   &graphql.Field{Type: graphql.String},
			"center":       &graphql.Field{Type: geoPointType},
			"zoom":         &graphql.Field{Type: graphql.Int},
			"route_count":  &graphql.Field{Type: graphql.Int},
			"marker_count": &graphql.Field{Type: graphql.Int},
			"line_count":   &graphql.Field{Type: graphql.Int},
			"created_at":   &graphql.Field{Type: graphql.DateTime},
			"routes":       &graphql.Field{Type: graphql.NewList(mapRouteType)},
			"dropped":      &graphql.Field{Type: graphql.NewList(droppedType)},
			"html_url": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return linksFor(p.Source.(*domain.MapRecord).ID).HTML, nil
				},
			},
			"geojson_url": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return linksFor(p.Source.(*domain.MapRecord).ID).GeoJSON, nil
				},
			},
		},
	})

	mapPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapPage",
		Fields: graphql.Fields{
			"total": &graphql.Field{Type: graphql.Int},
			"maps":  &graphql.Field{Type: graphql.NewList(mapType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tiles": &graphql.Field{
				Type:        graphql.NewList(tileType),
				Description: "Registered tile styles",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return plotter.TileStyles(), nil
				},
			},
			"curve": &graphql.Field{
				Type:        curveType,
				Description: "Sample the great-circle arc between two points",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"destination": &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"points":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					origin, err := geoPointArg(p.Args["origin"])
					if err != nil {
						return nil, err
					}
					dest, err := geoPointArg(p.Args["destination"])
					if err != nil {
						return nil, err
					}
					return deps.Curves.Compute(origin, dest, p.Args["points"].(int))
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Get a stored map by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Plots.Get(p.Context, p.Args["id"].(string))
				},
			},
			"maps": &graphql.Field{
				Type:        mapPageType,
				Description: "List stored maps, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					recs, total, err := deps.Plots.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					out := make([]*domain.MapRecord, len(recs))
					for i := range recs {
						out[i] = &recs[i]
					}
					return map[string]any{"total": total, "maps": out}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"plot": &graphql.Field{
				Type:        mapType,
				Description: "Geocode rows, render and store a map",
				Args: graphql.FieldConfigArgument{
					"rows":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(routeRowInput)))},
					"tile_style": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rows, err := routeRowsArg(p.Args["rows"])
					if err != nil {
						return nil, err
					}
					if len(rows) > maxSyncRows {
						return nil, fmt.Errorf("too many rows (max %d)", maxSyncRows)
					}
					res, err := deps.Plots.Plot(p.Context, usecases.PlotRequest{
						Rows:      rows,
						TileStyle: p.Args["tile_style"].(string),
					})
					if err != nil {
						return nil, err
					}
					return res.Record, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func geoPointArg(v any) (domain.GeoPoint, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%w: expected an object", domain.ErrMalformedCoordinate)
	}
	lat, _ := m["lat"].(float64)
	lon, _ := m["lon"].(float64)
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

func routeRowsArg(v any) ([]domain.RouteRow, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: rows must be a list", domain.ErrInvalidRow)
	}
	rows := make([]domain.RouteRow, 0, len(list))
	for _, item := range list {
		m, _ := item.(map[string]any)
		dep, _ := m["departure_city"].(string)
		arr, _ := m["arrival_city"].(string)
		color, _ := m["line_color"].(string)
		rows = append(rows, domain.RouteRow{DepartureCity: dep, ArrivalCity: arr, LineColor: color})
	}
	return rows, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
