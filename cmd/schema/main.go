package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/mapdoc"
	"hexloom/editor/internal/tileset"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	mapSchema, err := buildMapSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build map schema: %v\n", err)
		os.Exit(1)
	}
	tilesetSchema, err := buildTilesetSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build tileset schema: %v\n", err)
		os.Exit(1)
	}

	if err := writeSchema(filepath.Join(outDir, "map.schema.json"), mapSchema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write map schema: %v\n", err)
		os.Exit(1)
	}
	if err := writeSchema(filepath.Join(outDir, "tileset.schema.json"), tilesetSchema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write tileset schema: %v\n", err)
		os.Exit(1)
	}
}

// The runtime types marshal through custom encoders (tilesets keyed by
// decimal stable id, rotations as names), so the generator describes
// the file shapes with plain wire structs instead of reflecting the
// runtime types directly.

type vec2File struct {
	X float64 `json:"x" jsonschema:"required"`
	Y float64 `json:"y" jsonschema:"required"`
}

type vec3File struct {
	X float64 `json:"x" jsonschema:"required"`
	Y float64 `json:"y" jsonschema:"required"`
	Z float64 `json:"z" jsonschema:"required"`
}

type layoutFile struct {
	Orientation string   `json:"orientation" jsonschema:"required,description=Hex cell alignment against the plane axes"`
	Size        vec2File `json:"size" jsonschema:"required,description=Cell radius along each axis"`
	Origin      vec2File `json:"origin" jsonschema:"required,description=World position of cell 0:0"`
}

type transformFile struct {
	Translation vec3File `json:"translation" jsonschema:"required"`
	Yaw         float64  `json:"yaw" jsonschema:"required"`
	Scale       vec3File `json:"scale" jsonschema:"required"`
}

type tileFile struct {
	ID        int           `json:"id" jsonschema:"required,minimum=0"`
	Name      string        `json:"name" jsonschema:"required"`
	Path      string        `json:"path" jsonschema:"required,description=Asset path the tile renders from"`
	Transform transformFile `json:"transform" jsonschema:"required,description=Placement adjustment applied to every instance of the tile"`
}

type tilesetFile struct {
	Version int        `json:"version" jsonschema:"required"`
	Name    string     `json:"name" jsonschema:"required"`
	Tiles   []tileFile `json:"tiles" jsonschema:"required,description=Tiles in display order"`
}

type locationFile struct {
	X int `json:"x" jsonschema:"required"`
	Y int `json:"y" jsonschema:"required"`
}

type instanceFile struct {
	Location locationFile `json:"location" jsonschema:"required,description=Axial hex coordinate"`
	Tileset  int          `json:"tileset" jsonschema:"required,minimum=0,description=Stable id of the tileset the tile comes from"`
	TileID   int          `json:"tile_id" jsonschema:"required,minimum=0"`
	Rotation string       `json:"rotation" jsonschema:"description=Sixth-turn rotation step"`
}

type layerFile struct {
	Name  string         `json:"name" jsonschema:"required"`
	Tiles []instanceFile `json:"tiles" jsonschema:"required"`
}

type mapFile struct {
	Version  int                    `json:"version" jsonschema:"required"`
	Layout   layoutFile             `json:"layout" jsonschema:"required"`
	Tilesets map[string]tilesetFile `json:"tilesets" jsonschema:"required"`
	Layers   []layerFile            `json:"layers" jsonschema:"required"`
}

func buildMapSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	schema := reflector.ReflectFromType(reflect.TypeOf(mapFile{}))
	if schema == nil {
		return nil, fmt.Errorf("failed to reflect map schema")
	}
	schema.Title = "Hexloom Map"
	schema.Description = "Versioned hex map document: layout, tilesets keyed by stable id, layers of placed tiles."

	if err := constrainVersion(schema, mapdoc.Version); err != nil {
		return nil, err
	}

	layoutSchema, err := property(schema, "layout")
	if err != nil {
		return nil, err
	}
	orientation, err := property(layoutSchema, "orientation")
	if err != nil {
		return nil, err
	}
	orientation.Enum = []interface{}{string(grid.OrientationPointy), string(grid.OrientationFlat)}

	tilesetBody, err := reflectTilesetFile(reflector)
	if err != nil {
		return nil, err
	}
	tilesetBody.Version = ""
	schema.Properties.Set("tilesets", &jsonschema.Schema{
		Type:        "object",
		Description: "Tilesets keyed by decimal stable id.",
		PatternProperties: map[string]*jsonschema.Schema{
			"^[0-9]+$": tilesetBody,
		},
	})

	layersSchema, err := property(schema, "layers")
	if err != nil {
		return nil, err
	}
	tilesSchema, err := property(layersSchema.Items, "tiles")
	if err != nil {
		return nil, err
	}
	rotation, err := property(tilesSchema.Items, "rotation")
	if err != nil {
		return nil, err
	}
	for _, name := range tileset.RotationNames() {
		rotation.Enum = append(rotation.Enum, name)
	}

	return schema, nil
}

func buildTilesetSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	schema, err := reflectTilesetFile(reflector)
	if err != nil {
		return nil, err
	}
	schema.Title = "Hexloom Tileset"
	schema.Description = "Versioned tileset document: named tiles in display order."
	return schema, nil
}

func reflectTilesetFile(reflector jsonschema.Reflector) (*jsonschema.Schema, error) {
	schema := reflector.ReflectFromType(reflect.TypeOf(tilesetFile{}))
	if schema == nil {
		return nil, fmt.Errorf("failed to reflect tileset schema")
	}
	if err := constrainVersion(schema, tileset.Version); err != nil {
		return nil, err
	}
	return schema, nil
}

func constrainVersion(schema *jsonschema.Schema, version int) error {
	prop, err := property(schema, "version")
	if err != nil {
		return err
	}
	prop.Enum = []interface{}{version}
	return nil
}

func property(schema *jsonschema.Schema, name string) (*jsonschema.Schema, error) {
	if schema == nil || schema.Properties == nil {
		return nil, fmt.Errorf("schema has no properties")
	}
	raw, ok := schema.Properties.Get(name)
	if !ok {
		return nil, fmt.Errorf("schema is missing property %q", name)
	}
	prop, ok := raw.(*jsonschema.Schema)
	if !ok {
		return nil, fmt.Errorf("property %q is not a schema", name)
	}
	return prop, nil
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
