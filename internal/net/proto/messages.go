package proto

import (
	"encoding/json"
	"fmt"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/journal"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/session"
	"hexloom/editor/internal/tileset"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Client message type identifiers.
	TypeCommand = "command"

	// Type identifiers for outbound payloads.
	typeWelcome = "welcome"
	typeState   = "state"
	typeEvent   = "event"
	typeFiles   = "files"
	typeAck     = "ack"
	typeError   = "error"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeWelcome = typeWelcome
	TypeState   = typeState
	TypeEvent   = typeEvent
	TypeFiles   = typeFiles
	TypeAck     = typeAck
	TypeError   = typeError
)

// CommandEnvelope carries one editor command. Op selects the command;
// the remaining fields are its payload and only the relevant ones need
// to be set.
type CommandEnvelope struct {
	Op        string           `json:"op"`
	Path      string           `json:"path,omitempty"`
	Paths     []string         `json:"paths,omitempty"`
	Name      string           `json:"name,omitempty"`
	Layer     scene.ID         `json:"layer,omitempty"`
	Tileset   scene.ID         `json:"tileset,omitempty"`
	Tile      tileset.TileID   `json:"tile,omitempty"`
	IDs       []tileset.TileID `json:"ids,omitempty"`
	InsertAt  int              `json:"insertAt,omitempty"`
	Location  *grid.Location   `json:"location,omitempty"`
	Rotation  tileset.Rotation `json:"rotation,omitempty"`
	Direction string           `json:"direction,omitempty"`
	Transform *grid.Transform  `json:"transform,omitempty"`
}

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver     int              `json:"ver,omitempty"`
	Type    string           `json:"type"`
	Seq     uint64           `json:"seq,omitempty"`
	Command *CommandEnvelope `json:"command,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured
// message. A missing version is treated as current; any other mismatch
// is rejected.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// BuildCommand converts a decoded client message into a session
// command. Client identity and origin metadata are populated by the
// transport when the command is accepted.
func BuildCommand(msg ClientMessage) (session.Command, error) {
	if msg.Type != TypeCommand {
		return session.Command{}, fmt.Errorf("unsupported message type %q", msg.Type)
	}
	if msg.Command == nil {
		return session.Command{}, fmt.Errorf("message carries no command")
	}
	env := msg.Command
	cmd := session.Command{Seq: msg.Seq, Type: session.CommandType(env.Op)}
	switch cmd.Type {
	case session.CommandNewMap, session.CommandCloseMap:
	case session.CommandSaveMap:
		cmd.Save = &session.SaveMapCommand{Path: env.Path}
	case session.CommandLoadMap:
		if env.Path == "" {
			return session.Command{}, fmt.Errorf("%s requires a path", env.Op)
		}
		cmd.Load = &session.LoadMapCommand{Path: env.Path}
	case session.CommandCreateLayer:
		cmd.CreateLayer = &session.CreateLayerCommand{Name: env.Name}
	case session.CommandSelectLayer:
		cmd.SelectLayer = &session.SelectLayerCommand{Layer: env.Layer}
	case session.CommandSelectTileset:
		cmd.SelectTileset = &session.SelectTilesetCommand{Tileset: env.Tileset}
	case session.CommandCreateTileset:
		cmd.CreateTileset = &session.CreateTilesetCommand{Name: env.Name}
	case session.CommandDeleteTileset:
		cmd.DeleteTileset = &session.DeleteTilesetCommand{Tileset: env.Tileset}
	case session.CommandAddTiles:
		if len(env.Paths) == 0 {
			return session.Command{}, fmt.Errorf("%s requires paths", env.Op)
		}
		cmd.AddTiles = &session.AddTilesCommand{Tileset: env.Tileset, Paths: env.Paths}
	case session.CommandReorderTiles:
		cmd.Reorder = &session.ReorderTilesCommand{Tileset: env.Tileset, IDs: env.IDs, InsertAt: env.InsertAt}
	case session.CommandSetTileTransform:
		if env.Transform == nil {
			return session.Command{}, fmt.Errorf("%s requires a transform", env.Op)
		}
		cmd.SetTransform = &session.SetTileTransformCommand{Tileset: env.Tileset, Tile: env.Tile, Transform: *env.Transform}
	case session.CommandRenameTile:
		cmd.Rename = &session.RenameTileCommand{Tileset: env.Tileset, Tile: env.Tile, Name: env.Name}
	case session.CommandPlaceTile:
		if env.Location == nil {
			return session.Command{}, fmt.Errorf("%s requires a location", env.Op)
		}
		cmd.Place = &session.PlaceTileCommand{
			Layer:    env.Layer,
			Location: *env.Location,
			Tileset:  env.Tileset,
			Tile:     env.Tile,
			Rotation: env.Rotation,
		}
	case session.CommandEraseTile:
		if env.Location == nil {
			return session.Command{}, fmt.Errorf("%s requires a location", env.Op)
		}
		cmd.Erase = &session.EraseTileCommand{Layer: env.Layer, Location: *env.Location}
	case session.CommandRotateTile:
		if env.Location == nil {
			return session.Command{}, fmt.Errorf("%s requires a location", env.Op)
		}
		cmd.Rotate = &session.RotateTileCommand{
			Layer:     env.Layer,
			Location:  *env.Location,
			Direction: session.RotateDirection(env.Direction),
		}
	case session.CommandImportTilesets:
		if len(env.Paths) == 0 {
			return session.Command{}, fmt.Errorf("%s requires paths", env.Op)
		}
		cmd.Import = &session.ImportTilesetsCommand{Paths: env.Paths}
	case session.CommandExportTileset:
		if env.Path == "" {
			return session.Command{}, fmt.Errorf("%s requires a path", env.Op)
		}
		cmd.Export = &session.ExportTilesetCommand{Tileset: env.Tileset, Path: env.Path}
	case session.CommandListFiles:
		cmd.List = &session.ListFilesCommand{Path: env.Path}
	default:
		return session.Command{}, fmt.Errorf("unknown op %q", env.Op)
	}
	return cmd, nil
}

// EncodeWelcome renders the first message a client receives.
func EncodeWelcome(clientID string, snap session.Snapshot) ([]byte, error) {
	frame := struct {
		Ver      int              `json:"ver"`
		Type     string           `json:"type"`
		ClientID string           `json:"clientId"`
		Tick     uint64           `json:"tick"`
		State    session.Snapshot `json:"state"`
	}{
		Ver:      Version,
		Type:     typeWelcome,
		ClientID: clientID,
		Tick:     snap.Tick,
		State:    snap,
	}
	return json.Marshal(frame)
}

// EncodeState renders a full snapshot broadcast.
func EncodeState(tick uint64, snap session.Snapshot) ([]byte, error) {
	frame := struct {
		Ver   int              `json:"ver"`
		Type  string           `json:"type"`
		Tick  uint64           `json:"tick"`
		State session.Snapshot `json:"state"`
	}{
		Ver:   Version,
		Type:  typeState,
		Tick:  tick,
		State: snap,
	}
	return json.Marshal(frame)
}

// EncodeEvent renders a batch of journal outcomes.
func EncodeEvent(tick uint64, outcomes []journal.Outcome) ([]byte, error) {
	frame := struct {
		Ver      int               `json:"ver"`
		Type     string            `json:"type"`
		Tick     uint64            `json:"tick"`
		Outcomes []journal.Outcome `json:"outcomes"`
	}{
		Ver:      Version,
		Type:     typeEvent,
		Tick:     tick,
		Outcomes: outcomes,
	}
	return json.Marshal(frame)
}

// EncodeFiles renders a file listing reply.
func EncodeFiles(tick uint64, listing session.FileListing) ([]byte, error) {
	frame := struct {
		Ver   int      `json:"ver"`
		Type  string   `json:"type"`
		Tick  uint64   `json:"tick"`
		Path  string   `json:"path,omitempty"`
		Files []string `json:"files"`
	}{
		Ver:   Version,
		Type:  typeFiles,
		Tick:  tick,
		Path:  listing.Path,
		Files: listing.Files,
	}
	if frame.Files == nil {
		frame.Files = []string{}
	}
	return json.Marshal(frame)
}

// CommandAck acknowledges that a command was accepted for processing.
// Accepted means enqueued, not applied.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeAck,
		Seq:  msg.Seq,
		Tick: msg.Tick,
	}
	return json.Marshal(frame)
}

// CommandError notifies the client that a command was refused or
// failed to apply.
type CommandError struct {
	Seq    uint64
	Op     string
	Reason string
	Tick   uint64
}

// EncodeCommandError renders a command error reply.
func EncodeCommandError(msg CommandError) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq,omitempty"`
		Op     string `json:"op,omitempty"`
		Reason string `json:"reason"`
		Tick   uint64 `json:"tick,omitempty"`
	}{
		Ver:    Version,
		Type:   typeError,
		Seq:    msg.Seq,
		Op:     msg.Op,
		Reason: msg.Reason,
		Tick:   msg.Tick,
	}
	return json.Marshal(frame)
}

// EncodeOutbound renders a hub broadcast in its wire form.
func EncodeOutbound(msg session.Outbound) ([]byte, error) {
	switch msg.Kind {
	case session.OutboundWelcome:
		if msg.Welcome == nil {
			return nil, fmt.Errorf("welcome message without payload")
		}
		return EncodeWelcome(msg.Welcome.ClientID, msg.Welcome.State)
	case session.OutboundState:
		if msg.State == nil {
			return nil, fmt.Errorf("state message without payload")
		}
		return EncodeState(msg.Tick, *msg.State)
	case session.OutboundEvent:
		return EncodeEvent(msg.Tick, msg.Outcomes)
	case session.OutboundFiles:
		if msg.Files == nil {
			return nil, fmt.Errorf("files message without payload")
		}
		return EncodeFiles(msg.Tick, *msg.Files)
	case session.OutboundError:
		if msg.Err == nil {
			return nil, fmt.Errorf("error message without payload")
		}
		return EncodeCommandError(CommandError{
			Seq:    msg.Err.Seq,
			Op:     msg.Err.Op,
			Reason: msg.Err.Reason,
			Tick:   msg.Tick,
		})
	default:
		return nil, fmt.Errorf("unknown outbound kind %q", msg.Kind)
	}
}
