package session

import "errors"

// Command preconditions. These surface as per-command error replies;
// persistence failures travel through the journal instead.
var (
	// ErrNoMap reports a command that requires an open map.
	ErrNoMap = errors.New("session: no open map")
	// ErrNoPath reports a save with neither an explicit path nor a
	// recorded one.
	ErrNoPath = errors.New("session: no path recorded for the open map")
	// ErrNoWorkspace reports a persistence command without a storage
	// root configured.
	ErrNoWorkspace = errors.New("session: no workspace configured")
	// ErrUnknownLayer reports a target id that is not a layer of the
	// open map.
	ErrUnknownLayer = errors.New("session: unknown layer")
	// ErrUnknownTileset reports a target id that is not a tileset of
	// the open map.
	ErrUnknownTileset = errors.New("session: unknown tileset")
	// ErrNoInstance reports a rotate on a location with no placed tile.
	ErrNoInstance = errors.New("session: no tile at location")
	// ErrUnknownCommand reports a command type the hub does not handle.
	ErrUnknownCommand = errors.New("session: unknown command type")
	// ErrMissingPayload reports a command whose typed payload is nil.
	ErrMissingPayload = errors.New("session: missing command payload")
)
