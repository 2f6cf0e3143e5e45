package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	dmsPartType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DMSCoordinate",
		Fields: graphql.Fields{
			"degrees":         &graphql.Field{Type: graphql.Int},
			"minutes":         &graphql.Field{Type: graphql.Int},
			"seconds":         &graphql.Field{Type: graphql.Int},
			"decimal_minutes": &graphql.Field{Type: graphql.Float},
			"hemisphere":      &graphql.Field{Type: graphql.String},
		},
	})

	dmsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DMS",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: dmsPartType},
			"longitude": &graphql.Field{Type: dmsPartType},
			"text":      &graphql.Field{Type: graphql.String},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distance",
		Fields: graphql.Fields{
			"ellipsoid":       &graphql.Field{Type: graphql.String},
			"distance":        &graphql.Field{Type: graphql.Float},
			"unit":            &graphql.Field{Type: graphql.String},
			"meters":          &graphql.Field{Type: graphql.Float},
			"azimuth":         &graphql.Field{Type: graphql.Float},
			"reverse_azimuth": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center_x": &graphql.Field{Type: graphql.Float},
			"center_y": &graphql.Field{Type: graphql.Float},
			"width":    &graphql.Field{Type: graphql.Float},
			"height":   &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Map",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"kind":              &graphql.Field{Type: graphql.String},
			"title":             &graphql.Field{Type: graphql.String},
			"image_type":        &graphql.Field{Type: graphql.String},
			"dpi":               &graphql.Field{Type: graphql.Int},
			"projected":         &graphql.Field{Type: graphql.Boolean},
			"central_meridian":  &graphql.Field{Type: graphql.Float},
			"viewport":          &graphql.Field{Type: viewportType},
			"point_of_interest": &graphql.Field{Type: geoPointType},
			"radius_miles":      &graphql.Field{Type: graphql.Float},
			"filter_date":       &graphql.Field{Type: graphql.Int},
		},
	})

	captionRowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CaptionRow",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"elevation":   &graphql.Field{Type: graphql.String},
			"distance_mi": &graphql.Field{Type: graphql.Float},
			"layer":       &graphql.Field{Type: graphql.String},
			"station_id":  &graphql.Field{Type: graphql.String},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Geodesic distance between two points",
				Args: graphql.FieldConfigArgument{
					"lat1":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon1":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat2":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon2":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"unit":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "m"},
					"ellipsoid": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					unit, err := geospatial.ParseUnit(p.Args["unit"].(string))
					if err != nil {
						return nil, err
					}
					p1 := domain.GeoPoint{Lat: p.Args["lat1"].(float64), Lon: p.Args["lon1"].(float64)}
					p2 := domain.GeoPoint{Lat: p.Args["lat2"].(float64), Lon: p.Args["lon2"].(float64)}
					return deps.Geodesy.Distance(p.Args["ellipsoid"].(string), p1, p2, unit)
				},
			},
			"dms": &graphql.Field{
				Type:        dmsType,
				Description: "Degree/minute/second notation of a point",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"precision": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "seconds"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					precision := geospatial.WholeSeconds
					switch p.Args["precision"].(string) {
					case "seconds":
					case "minutes":
						precision = geospatial.DecimalMinutes
					default:
						return nil, fmt.Errorf("precision must be seconds or minutes")
					}
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return deps.Geodesy.DMS(pt, precision)
				},
			},
			"meridian": &graphql.Field{
				Type:        graphql.Float,
				Description: "Central meridian for ports and polyline tracks",
				Args: graphql.FieldConfigArgument{
					"ports":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
					"tracks": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewList(graphql.NewNonNull(pointInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ports := pointsArg(p.Args["ports"])
					var tracks [][]domain.Segment
					if raw, ok := p.Args["tracks"].([]interface{}); ok {
						for _, t := range raw {
							line := domain.Feature{Points: pointsArg(t)}
							tracks = append(tracks, line.Segments())
						}
					}
					return deps.Geodesy.Meridian(ports, tracks)
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Get a map document by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Get(p.Context, p.Args["id"].(string))
				},
			},
			"caption": &graphql.Field{
				Type:        graphql.NewList(captionRowType),
				Description: "Caption rows of a forensic map",
				Args: graphql.FieldConfigArgument{
					"map_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caption, err := deps.Forensic.Caption(p.Context, p.Args["map_id"].(string))
					if err != nil {
						return nil, err
					}
					return caption.Rows, nil
				},
			},
			"stationCount": &graphql.Field{
				Type:        graphql.Int,
				Description: "Number of stations in a catalogue",
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseStationKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Stations.Count(p.Context, kind)
				},
			},
			"stationHeaders": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Column names of a station catalogue",
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseStationKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Stations.Headers(p.Context, kind)
				},
			},
			"stationRows": &graphql.Field{
				Type:        graphql.NewList(graphql.NewList(graphql.String)),
				Description: "A window of station catalogue rows by object id",
				Args: graphql.FieldConfigArgument{
					"kind":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"start": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"count": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseStationKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					start, count := usecases.RowWindow(p.Args["start"].(int), p.Args["count"].(int))
					return deps.Stations.Rows(p.Context, kind, start, count)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// pointsArg converts a list of PointInput values.
func pointsArg(v interface{}) []domain.GeoPoint {
	raw, _ := v.([]interface{})
	out := make([]domain.GeoPoint, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		lat, _ := m["lat"].(float64)
		lon, _ := m["lon"].(float64)
		out = append(out, domain.GeoPoint{Lat: lat, Lon: lon})
	}
	return out
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
			return errBadRequest(c, "invalid request body")
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
