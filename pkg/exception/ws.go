package exception

import "errors"

// WS errors
var (
	ErrWebSocketConnectionClose = errors.New("websocket: connection closed")
	ErrWebSocketNoIdentity      = errors.New("websocket: missing tenant or user")
)
