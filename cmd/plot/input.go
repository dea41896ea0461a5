package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// input is the content of a plot file: rows to geocode, or routes that
// already carry coordinates.
type input struct {
	Rows      []domain.RouteRow `json:"rows"`
	Routes    []domain.Route    `json:"routes"`
	TileStyle string            `json:"tile_style"`
}

// readInput parses either a bare JSON array of rows or an object with
// rows/routes, the same shape POST /v1/maps accepts.
func readInput(r io.Reader) (*input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, domain.ErrNoRows
	}

	if data[0] == '[' {
		var rows []domain.RouteRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse rows: %w", err)
		}
		return &input{Rows: rows}, nil
	}

	var in input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if len(in.Rows) == 0 && len(in.Routes) == 0 {
		return nil, domain.ErrNoRows
	}
	return &in, nil
}
