package engine

import (
	"errors"
)

var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrUnknownPosition = errors.New("unknown lane position")
var ErrUnknownSlot = errors.New("unknown slot")
var ErrUnknownTier = errors.New("unknown tier")
var ErrUnknownDirection = errors.New("unknown direction")
var ErrUnknownTarget = errors.New("unknown drop target")
var ErrBadPayload = errors.New("malformed drag payload")

type Tier string

const (
	TierUnset Tier = ""
	TierHigh  Tier = "high"
	TierMid   Tier = "mid"
	TierLow   Tier = "low"
)

// TierOrder is the display order of the pool rows.
var TierOrder = []Tier{TierHigh, TierMid, TierLow}

type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

type Direction string

const (
	// DirBackward is what a primary click on the operator does.
	DirBackward Direction = "backward"
	// DirForward is what a secondary (context) click on the operator does.
	DirForward Direction = "forward"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Player struct {
	Name string
	Tier Tier
}

// Lane slots hold player names, "" meaning empty. A name is only meaningful
// while the registry still has a player by that name.
type Lane struct {
	Position string
	SlotA    string
	SlotB    string
	Operator Operator
}

type ContextMenu struct {
	Visible    bool
	X          int
	Y          int
	TargetName string
}

type Rules struct {
	Operators []Operator
}

type State struct {
	Players     []Player
	Lanes       []Lane
	DragOver    *DropTarget
	ContextMenu ContextMenu
	Theme       Theme
	Rules       Rules
}

type CommandType string

const (
	CmdSubmitNames      CommandType = "SubmitNames"
	CmdSetTier          CommandType = "SetTier"
	CmdDeletePlayer     CommandType = "DeletePlayer"
	CmdCycleOperator    CommandType = "CycleOperator"
	CmdSwapSlots        CommandType = "SwapSlots"
	CmdResetLanes       CommandType = "ResetLanes"
	CmdDrop             CommandType = "Drop"
	CmdDragOver         CommandType = "DragOver"
	CmdDragLeave        CommandType = "DragLeave"
	CmdRandomizeSides   CommandType = "RandomizeSides"
	CmdRandomAssign     CommandType = "RandomAssign"
	CmdOpenContextMenu  CommandType = "OpenContextMenu"
	CmdCloseContextMenu CommandType = "CloseContextMenu"
	CmdToggleTheme      CommandType = "ToggleTheme"
)

/*
	CmdSubmitNames    -> EvtPlayerAdded (one per new name)
	CmdSetTier        -> EvtTierChanged
	CmdDeletePlayer   -> EvtSlotCleared* -> EvtPlayerDeleted
	CmdCycleOperator  -> EvtOperatorChanged
	CmdSwapSlots      -> EvtLaneSwapped
	CmdResetLanes     -> EvtLanesReset
	CmdDrop           -> EvtDragOverChanged? then one of:
	                       EvtSlotCleared* + EvtTierChanged           (onto a pool row)
	                       EvtPlayerPlaced [+ EvtPlayerEvicted + EvtTierChanged] (pool -> slot)
	                       EvtSlotCleared + EvtPlayerPlaced           (slot -> empty slot)
	                       EvtSlotsSwapped                            (slot -> occupied slot)
	CmdRandomizeSides -> EvtSidesRandomized (only when the coin says flip)
	CmdRandomAssign   -> EvtPlayerPlaced, or EvtRandomAssignSkipped when nothing fits
*/

type Command struct {
	Type      CommandType
	Text      string
	Name      string
	Tier      Tier
	Position  string
	Direction Direction
	Payload   DragPayload
	Target    DropTarget
	X         int
	Y         int
}

type EventType string

const (
	EvtPlayerAdded         EventType = "PlayerAdded"
	EvtTierChanged         EventType = "TierChanged"
	EvtPlayerDeleted       EventType = "PlayerDeleted"
	EvtSlotCleared         EventType = "SlotCleared"
	EvtPlayerPlaced        EventType = "PlayerPlaced"
	EvtPlayerEvicted       EventType = "PlayerEvicted"
	EvtSlotsSwapped        EventType = "SlotsSwapped"
	EvtOperatorChanged     EventType = "OperatorChanged"
	EvtLaneSwapped         EventType = "LaneSwapped"
	EvtLanesReset          EventType = "LanesReset"
	EvtSidesRandomized     EventType = "SidesRandomized"
	EvtRandomAssignSkipped EventType = "RandomAssignSkipped"
	EvtDragOverChanged     EventType = "DragOverChanged"
	EvtContextMenuChanged  EventType = "ContextMenuChanged"
	EvtThemeToggled        EventType = "ThemeToggled"
)

type Event struct {
	Type     EventType
	Name     string
	Tier     Tier
	Position string
	Slot     Slot
	Operator Operator
	Detail   string
}

// Mutates reports whether the event describes a state change. Skip reports
// are informational only.
func (e Event) Mutates() bool {
	return e.Type != EvtRandomAssignSkipped
}

// Changed reports whether any of the events changed the state.
func Changed(events []Event) bool {
	for _, e := range events {
		if e.Mutates() {
			return true
		}
	}
	return false
}

// Apply runs cmd against s using the package random source.
func Apply(s State, cmd Command) ([]Event, State, error) {
	return ApplyWith(s, cmd, defaultRand{})
}

// ApplyWith is Apply with an explicit random source. s is never modified;
// the returned state is a separate copy whenever anything changed.
func ApplyWith(s State, cmd Command, r Rand) ([]Event, State, error) {
	newState := Clone(s)

	var events []Event
	var err error

	switch cmd.Type {
	case CmdSubmitNames:
		events = submitNames(&newState, cmd.Text)

	case CmdSetTier:
		if !validTier(cmd.Tier, true) {
			return nil, s, ErrUnknownTier
		}
		events = setTier(&newState, cmd.Name, cmd.Tier)
		events = append(events, dismissMenuFor(&newState, cmd.Name)...)

	case CmdDeletePlayer:
		events = deletePlayer(&newState, cmd.Name)
		events = append(events, dismissMenuFor(&newState, cmd.Name)...)

	case CmdCycleOperator:
		events, err = cycleOperator(&newState, cmd.Position, cmd.Direction)

	case CmdSwapSlots:
		events, err = swapSlots(&newState, cmd.Position)

	case CmdResetLanes:
		events = resetLanes(&newState)

	case CmdDrop:
		events, err = handleDrop(&newState, cmd.Payload, cmd.Target)

	case CmdDragOver:
		events, err = dragOver(&newState, cmd.Target)

	case CmdDragLeave:
		events = dragLeave(&newState)

	case CmdRandomizeSides:
		events = randomizeSides(&newState, r)

	case CmdRandomAssign:
		events = randomAssignOne(&newState, r)

	case CmdOpenContextMenu:
		events = openContextMenu(&newState, cmd.Name, cmd.X, cmd.Y)

	case CmdCloseContextMenu:
		events = closeContextMenu(&newState)

	case CmdToggleTheme:
		if newState.Theme == ThemeLight {
			newState.Theme = ThemeDark
		} else {
			newState.Theme = ThemeLight
		}
		events = []Event{{Type: EvtThemeToggled, Detail: string(newState.Theme)}}

	default:
		return nil, s, ErrUnsupportedCommand
	}

	if err != nil {
		return nil, s, err
	}
	if !Changed(events) {
		return events, s, nil
	}
	return events, newState, nil
}

func openContextMenu(s *State, name string, x, y int) []Event {
	if playerIndex(*s, name) < 0 {
		return nil
	}
	s.ContextMenu = ContextMenu{Visible: true, X: x, Y: y, TargetName: name}
	return []Event{{Type: EvtContextMenuChanged, Name: name}}
}

func closeContextMenu(s *State) []Event {
	if !s.ContextMenu.Visible {
		return nil
	}
	s.ContextMenu = ContextMenu{}
	return []Event{{Type: EvtContextMenuChanged}}
}

func dismissMenuFor(s *State, name string) []Event {
	if s.ContextMenu.Visible && s.ContextMenu.TargetName == name {
		return closeContextMenu(s)
	}
	return nil
}
