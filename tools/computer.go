package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

const ComputerToolName = "computer"

const (
	ActionMoveMouse         = "move_mouse"
	ActionClickMouse        = "click_mouse"
	ActionDragMouse         = "drag_mouse"
	ActionScroll            = "scroll"
	ActionPressKey          = "press_key"
	ActionTypeText          = "type_text"
	ActionWait              = "wait"
	ActionTakeScreenshot    = "take_screenshot"
	ActionGetCursorPosition = "get_cursor_position"
)

// ComputerArgs are the arguments of the computer tool.
type ComputerArgs struct {
	Action      string   `json:"action" enum:"move_mouse,click_mouse,drag_mouse,scroll,press_key,type_text,wait,take_screenshot,get_cursor_position" description:"Action to perform on the desktop."`
	Coordinates []int    `json:"coordinates,omitempty" description:"Target position as [x, y]."`
	Button      string   `json:"button,omitempty" enum:"left,right,middle,back,forward" description:"Mouse button for click_mouse."`
	ClickType   string   `json:"click_type,omitempty" enum:"click,down,up" description:"Kind of click for click_mouse."`
	NumClicks   int      `json:"num_clicks,omitempty" description:"Number of clicks for click_mouse."`
	Path        [][]int  `json:"path,omitempty" description:"Points of a drag as [[x, y], ...]."`
	DeltaX      float64  `json:"delta_x,omitempty" description:"Horizontal scroll amount."`
	DeltaY      float64  `json:"delta_y,omitempty" description:"Vertical scroll amount."`
	Keys        []string `json:"keys,omitempty" description:"Keys to press for press_key."`
	HoldKeys    []string `json:"hold_keys,omitempty" description:"Keys held down during the action."`
	Text        string   `json:"text,omitempty" description:"Text to type for type_text."`
	Duration    float64  `json:"duration,omitempty" description:"Seconds to wait or to hold keys."`
	Screenshot  *bool    `json:"screenshot,omitempty" description:"Whether to return a screenshot after the action."`
}

// Validate checks that the arguments the action needs are present.
func (a ComputerArgs) Validate() error {
	switch a.Action {
	case ActionMoveMouse:
		if len(a.Coordinates) == 0 {
			return errors.New("coordinates is required for move_mouse action")
		}
	case ActionClickMouse:
		if a.Button == "" {
			return errors.New("button is required for click_mouse action")
		}
	case ActionDragMouse:
		if len(a.Path) == 0 {
			return errors.New("path is required for drag_mouse action")
		}
	case ActionPressKey:
		if len(a.Keys) == 0 {
			return errors.New("keys is required for press_key action")
		}
	case ActionTypeText:
		if a.Text == "" {
			return errors.New("text is required for type_text action")
		}
	case ActionWait:
		if a.Duration <= 0 {
			return errors.New("duration is required for wait action")
		}
	case ActionScroll, ActionTakeScreenshot, ActionGetCursorPosition:
	case "":
		return errors.New("action is required")
	default:
		return fmt.Errorf("unknown computer action %q", a.Action)
	}
	return nil
}

func (a ComputerArgs) params() instance.ComputerParams {
	params := instance.ComputerParams{
		Action:      a.Action,
		Button:      optString(a.Button),
		ClickType:   optString(a.ClickType),
		Coordinates: optSlice(a.Coordinates),
		NumClicks:   optNonZero(a.NumClicks),
		HoldKeys:    optSlice(a.HoldKeys),
		Path:        optSlice(a.Path),
		Keys:        optSlice(a.Keys),
		Text:        optString(a.Text),
		Duration:    optNonZero(a.Duration),
		DeltaX:      optNonZero(a.DeltaX),
		DeltaY:      optNonZero(a.DeltaY),
	}
	if a.Action == ActionScroll {
		params.DeltaX = core.Value(a.DeltaX)
		params.DeltaY = core.Value(a.DeltaY)
	}
	if a.Screenshot != nil {
		params.Screenshot = core.Value(*a.Screenshot)
	}
	return params
}

var computerTool = mustTool(ComputerToolName,
	"Control the mouse and keyboard of the instance desktop and take screenshots.",
	ComputerArgs{})

// Computer drives the mouse, keyboard and screen of one instance.
type Computer struct {
	api        API
	instanceID string
}

func NewComputer(api API, instanceID string) *Computer {
	return &Computer{api: api, instanceID: instanceID}
}

func (c *Computer) Tool() act.Tool { return computerTool }

func (c *Computer) Call(ctx context.Context, args map[string]any) (any, error) {
	parsed, err := decodeArgs[ComputerArgs](args)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, parsed)
}

// Do validates args and sends the action.
func (c *Computer) Do(ctx context.Context, args ComputerArgs) (*instance.CommandResponse, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return c.api.Computer(ctx, c.instanceID, args.params())
}

func (c *Computer) MoveMouse(ctx context.Context, coordinates []int, holdKeys ...string) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionMoveMouse, Coordinates: coordinates, HoldKeys: holdKeys})
}

// ClickOptions tune a click. Zero values leave the service defaults.
type ClickOptions struct {
	ClickType   string
	Coordinates []int
	NumClicks   int
	HoldKeys    []string
}

func (c *Computer) ClickMouse(ctx context.Context, button string, opts ClickOptions) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{
		Action:      ActionClickMouse,
		Button:      button,
		ClickType:   opts.ClickType,
		Coordinates: opts.Coordinates,
		NumClicks:   opts.NumClicks,
		HoldKeys:    opts.HoldKeys,
	})
}

func (c *Computer) DragMouse(ctx context.Context, path [][]int, holdKeys ...string) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionDragMouse, Path: path, HoldKeys: holdKeys})
}

// Scroll scrolls by the given deltas, at coordinates when they are set.
func (c *Computer) Scroll(ctx context.Context, deltaX, deltaY float64, coordinates []int, holdKeys ...string) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{
		Action:      ActionScroll,
		DeltaX:      deltaX,
		DeltaY:      deltaY,
		Coordinates: coordinates,
		HoldKeys:    holdKeys,
	})
}

// PressKey presses keys together. A zero hold releases them immediately.
func (c *Computer) PressKey(ctx context.Context, keys []string, hold time.Duration) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionPressKey, Keys: keys, Duration: hold.Seconds()})
}

func (c *Computer) TypeText(ctx context.Context, text string, holdKeys ...string) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionTypeText, Text: text, HoldKeys: holdKeys})
}

// Wait pauses on the instance, not locally.
func (c *Computer) Wait(ctx context.Context, d time.Duration) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionWait, Duration: d.Seconds()})
}

func (c *Computer) TakeScreenshot(ctx context.Context) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionTakeScreenshot})
}

func (c *Computer) CursorPosition(ctx context.Context) (*instance.CommandResponse, error) {
	return c.Do(ctx, ComputerArgs{Action: ActionGetCursorPosition})
}
