package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
)

const (
	// maxSyncRows bounds rows accepted by the blocking plot endpoint. Each
	// distinct city costs one geocoder call.
	maxSyncRows  = 500
	maxAsyncRows = 10000

	geoJSONContentType = "application/geo+json"
)

// PlotMapRequest is the body of POST /v1/maps and POST /v1/maps/async.
// Routes with coordinates skip geocoding; otherwise Rows are geocoded.
type PlotMapRequest struct {
	Rows      []domain.RouteRow `json:"rows"`
	Routes    []domain.Route    `json:"routes,omitempty"`
	TileStyle string            `json:"tile_style,omitempty"`
}

// MapLinks points at the renderings of a stored map.
type MapLinks struct {
	Self    string `json:"self"`
	HTML    string `json:"html"`
	GeoJSON string `json:"geojson"`
}

// MapResponse is a stored map record with links to its artifacts.
type MapResponse struct {
	*domain.MapRecord
	Links MapLinks `json:"links"`
}

// AsyncPlotResponse is returned when a plot is handed to the workflow engine.
type AsyncPlotResponse struct {
	MapID  string   `json:"map_id"`
	RunID  string   `json:"run_id"`
	Status string   `json:"status"`
	Links  MapLinks `json:"links"`
}

// CurveRequest is the body of POST /v1/curves.
type CurveRequest struct {
	Origin      domain.GeoPoint `json:"origin"`
	Destination domain.GeoPoint `json:"destination"`
	Points      int             `json:"points,omitempty"`
}

func linksFor(id string) MapLinks {
	self := "/v1/maps/" + id
	return MapLinks{Self: self, HTML: self + "/html", GeoJSON: self + "/geojson"}
}

func newMapResponse(rec *domain.MapRecord) MapResponse {
	return MapResponse{MapRecord: rec, Links: linksFor(rec.ID)}
}

// ListTilesHandler returns the registered tile styles.
func ListTilesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"default": plotter.DefaultTileStyle,
			"styles":  plotter.TileStyles(),
		})
	}
}

// CurveHandler samples a single great-circle arc.
func CurveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CurveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		res, err := deps.Curves.Compute(req.Origin, req.Destination, req.Points)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	}
}

func parsePlotRequest(c *fiber.Ctx, maxRows int) (*PlotMapRequest, error) {
	var req PlotMapRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadRequest(c, "invalid JSON body")
	}
	n := len(req.Rows)
	if len(req.Routes) > 0 {
		n = len(req.Routes)
	}
	if n == 0 {
		return nil, errBadRequest(c, "rows must not be empty")
	}
	if n > maxRows {
		return nil, errBadRequest(c, fmt.Sprintf("too many rows (max %d)", maxRows))
	}
	return &req, nil
}

// CreateMapHandler geocodes, renders and stores a map in one request.
func CreateMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parsePlotRequest(c, maxSyncRows)
		if req == nil {
			return err
		}

		res, err := deps.Plots.Plot(c.UserContext(), usecases.PlotRequest{
			Rows:      req.Rows,
			Routes:    req.Routes,
			TileStyle: req.TileStyle,
		})
		if err != nil {
			return writeError(c, err)
		}

		c.Location(linksFor(res.Record.ID).Self)
		return c.Status(fiber.StatusCreated).JSON(newMapResponse(res.Record))
	}
}

// CreateMapAsyncHandler schedules a plot on the workflow engine and
// returns immediately with the map ID it will be stored under.
func CreateMapAsyncHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Scheduler == nil {
			return errUnavailable(c, "background plotting is not enabled")
		}
		req, err := parsePlotRequest(c, maxAsyncRows)
		if req == nil {
			return err
		}
		if len(req.Rows) == 0 {
			return errBadRequest(c, "rows must not be empty")
		}
		for i, row := range req.Rows {
			if err := usecases.ValidateRow(row); err != nil {
				return errBadRequest(c, fmt.Sprintf("row %d: %v", i, err))
			}
		}

		job := domain.PlotJob{
			MapID:     usecases.NewMapID(),
			Rows:      req.Rows,
			TileStyle: req.TileStyle,
		}
		runID, err := deps.Scheduler.SchedulePlot(c.UserContext(), job)
		if err != nil {
			return writeError(c, err)
		}

		links := linksFor(job.MapID)
		c.Location(links.Self)
		return c.Status(fiber.StatusAccepted).JSON(AsyncPlotResponse{
			MapID:  job.MapID,
			RunID:  runID,
			Status: "scheduled",
			Links:  links,
		})
	}
}

// ListMapsHandler returns stored maps, newest first.
func ListMapsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := parsePage(c)
		recs, total, err := deps.Plots.List(c.UserContext(), offset, limit)
		if err != nil {
			return writeError(c, err)
		}

		data := make([]MapResponse, len(recs))
		for i := range recs {
			data[i] = newMapResponse(&recs[i])
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: data, Pagination: pg})
	}
}

// GetMapHandler returns a stored map record with its routes.
func GetMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Plots.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(newMapResponse(rec))
	}
}

// MapHTMLHandler serves the stored HTML document. ?download=true asks the
// browser to save it as map.html.
func MapHTMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := deps.Plots.HTML(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		if c.QueryBool("download") {
			c.Attachment("map.html")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(doc)
	}
}

// MapGeoJSONHandler serves a stored map as a GeoJSON FeatureCollection.
func MapGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := deps.Plots.GeoJSON(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, geoJSONContentType)
		return c.Send(doc)
	}
}
