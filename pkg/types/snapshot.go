package types

// Snapshot is the JSON view of one room's roster, sent to every client after
// each change.
//
//	version:      number, bumps on every state change
//	lanes:        [{position, slot_a, slot_b, operator}] in fixed order
//	pool:         {high: Player[], mid: Player[], low: Player[]} unplaced players
//	players:      Player[] every registered player, in insertion order
//	operators:    string[] the operator cycle of this room
//	drag_over:    DropTarget | absent
//	context_menu: {visible, x, y, target_name}
//	theme:        "dark" | "light"
type Snapshot struct {
	Version     int                 `json:"version"`
	Lanes       []Lane              `json:"lanes"`
	Pool        map[string][]Player `json:"pool"`
	Players     []Player            `json:"players"`
	Operators   []string            `json:"operators"`
	DragOver    *DropTarget         `json:"drag_over,omitempty"`
	ContextMenu ContextMenu         `json:"context_menu"`
	Theme       string              `json:"theme"`
}

type Player struct {
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"` // "" when cleared; shown in the mid row
}

type Lane struct {
	Position string `json:"position"`
	SlotA    string `json:"slot_a,omitempty"`
	SlotB    string `json:"slot_b,omitempty"`
	Operator string `json:"operator"`
}

type DropTarget struct {
	Type     string `json:"type"` // "pool" | "slot"
	Tier     string `json:"tier,omitempty"`
	Position string `json:"position,omitempty"`
	Slot     string `json:"slot,omitempty"` // "a" | "b"
}

type ContextMenu struct {
	Visible    bool   `json:"visible"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	TargetName string `json:"target_name,omitempty"`
}
