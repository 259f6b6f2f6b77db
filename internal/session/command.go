package session

import (
	"time"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/tileset"
)

// CommandType enumerates the supported editor commands.
type CommandType string

const (
	CommandNewMap           CommandType = "NewMap"
	CommandCloseMap         CommandType = "CloseMap"
	CommandSaveMap          CommandType = "SaveMap"
	CommandLoadMap          CommandType = "LoadMap"
	CommandCreateLayer      CommandType = "CreateLayer"
	CommandSelectLayer      CommandType = "SelectLayer"
	CommandSelectTileset    CommandType = "SelectTileset"
	CommandCreateTileset    CommandType = "CreateTileset"
	CommandDeleteTileset    CommandType = "DeleteTileset"
	CommandAddTiles         CommandType = "AddTiles"
	CommandReorderTiles     CommandType = "ReorderTiles"
	CommandSetTileTransform CommandType = "SetTileTransform"
	CommandRenameTile       CommandType = "RenameTile"
	CommandPlaceTile        CommandType = "PlaceTile"
	CommandEraseTile        CommandType = "EraseTile"
	CommandRotateTile       CommandType = "RotateTile"
	CommandImportTilesets   CommandType = "ImportTilesets"
	CommandExportTileset    CommandType = "ExportTileset"
	CommandListFiles        CommandType = "ListFiles"
)

// RotateDirection selects the step direction for RotateTile.
type RotateDirection string

const (
	RotateClockwise        RotateDirection = "clockwise"
	RotateCounterClockwise RotateDirection = "counterclockwise"
)

// SaveMapCommand writes the open map. An empty path reuses the path the
// map was last saved to or loaded from.
type SaveMapCommand struct {
	Path string `json:"path"`
}

// LoadMapCommand reads and instantiates a map file.
type LoadMapCommand struct {
	Path string `json:"path"`
}

// CreateLayerCommand adds a named layer to the open map.
type CreateLayerCommand struct {
	Name string `json:"name"`
}

// SelectLayerCommand changes the active layer.
type SelectLayerCommand struct {
	Layer scene.ID `json:"layer"`
}

// SelectTilesetCommand changes the active tileset.
type SelectTilesetCommand struct {
	Tileset scene.ID `json:"tileset"`
}

// CreateTilesetCommand adds an empty tileset to the open map.
type CreateTilesetCommand struct {
	Name string `json:"name"`
}

// DeleteTilesetCommand removes a tileset and every placement that
// references it.
type DeleteTilesetCommand struct {
	Tileset scene.ID `json:"tileset"`
}

// AddTilesCommand appends one tile per asset path to a tileset.
type AddTilesCommand struct {
	Tileset scene.ID `json:"tileset"`
	Paths   []string `json:"paths"`
}

// ReorderTilesCommand moves a block of tiles to a new display position.
type ReorderTilesCommand struct {
	Tileset  scene.ID         `json:"tileset"`
	IDs      []tileset.TileID `json:"ids"`
	InsertAt int              `json:"insertAt"`
}

// SetTileTransformCommand replaces a tile's placement transform.
type SetTileTransformCommand struct {
	Tileset   scene.ID       `json:"tileset"`
	Tile      tileset.TileID `json:"tile"`
	Transform grid.Transform `json:"transform"`
}

// RenameTileCommand changes a tile's display name.
type RenameTileCommand struct {
	Tileset scene.ID       `json:"tileset"`
	Tile    tileset.TileID `json:"tile"`
	Name    string         `json:"name"`
}

// PlaceTileCommand stamps a tile instance into a layer cell.
type PlaceTileCommand struct {
	Layer    scene.ID         `json:"layer"`
	Location grid.Location    `json:"location"`
	Tileset  scene.ID         `json:"tileset"`
	Tile     tileset.TileID   `json:"tile"`
	Rotation tileset.Rotation `json:"rotation"`
}

// EraseTileCommand removes the instance at a layer cell, if any.
type EraseTileCommand struct {
	Layer    scene.ID      `json:"layer"`
	Location grid.Location `json:"location"`
}

// RotateTileCommand steps the rotation of an existing instance.
type RotateTileCommand struct {
	Layer     scene.ID        `json:"layer"`
	Location  grid.Location   `json:"location"`
	Direction RotateDirection `json:"direction"`
}

// ImportTilesetsCommand reads tileset files into the open map, one
// background task per path.
type ImportTilesetsCommand struct {
	Paths []string `json:"paths"`
}

// ExportTilesetCommand writes one tileset to its own file.
type ExportTilesetCommand struct {
	Tileset scene.ID `json:"tileset"`
	Path    string   `json:"path"`
}

// ListFilesCommand lists workspace documents. An empty path lists the
// whole workspace; otherwise results are limited to that subtree.
type ListFilesCommand struct {
	Path string `json:"path"`
}

// Command represents an editor intent captured for processing on the
// next tick. Exactly one payload pointer matching Type is set; NewMap
// and CloseMap carry none.
type Command struct {
	OriginTick uint64      `json:"originTick,omitempty"`
	ClientID   string      `json:"clientId,omitempty"`
	Seq        uint64      `json:"seq,omitempty"`
	Type       CommandType `json:"type"`
	IssuedAt   time.Time   `json:"issuedAt"`

	Save          *SaveMapCommand          `json:"save,omitempty"`
	Load          *LoadMapCommand          `json:"load,omitempty"`
	CreateLayer   *CreateLayerCommand      `json:"createLayer,omitempty"`
	SelectLayer   *SelectLayerCommand      `json:"selectLayer,omitempty"`
	SelectTileset *SelectTilesetCommand    `json:"selectTileset,omitempty"`
	CreateTileset *CreateTilesetCommand    `json:"createTileset,omitempty"`
	DeleteTileset *DeleteTilesetCommand    `json:"deleteTileset,omitempty"`
	AddTiles      *AddTilesCommand         `json:"addTiles,omitempty"`
	Reorder       *ReorderTilesCommand     `json:"reorder,omitempty"`
	SetTransform  *SetTileTransformCommand `json:"setTransform,omitempty"`
	Rename        *RenameTileCommand       `json:"rename,omitempty"`
	Place         *PlaceTileCommand        `json:"place,omitempty"`
	Erase         *EraseTileCommand        `json:"erase,omitempty"`
	Rotate        *RotateTileCommand       `json:"rotate,omitempty"`
	Import        *ImportTilesetsCommand   `json:"import,omitempty"`
	Export        *ExportTilesetCommand    `json:"export,omitempty"`
	List          *ListFilesCommand        `json:"list,omitempty"`
}
