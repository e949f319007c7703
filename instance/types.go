package instance

import (
	"fmt"
	"strings"

	"github.com/m43i/go-scrapybara/core"
)

// Type is the flavor of a virtual machine.
type Type string

const (
	TypeUbuntu  Type = "ubuntu"
	TypeBrowser Type = "browser"
	TypeWindows Type = "windows"
)

// ParseType maps a type name to a Type. The retired names chrome and firefox
// map to TypeBrowser, and jupyter maps to TypeUbuntu.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ubuntu", "jupyter":
		return TypeUbuntu, nil
	case "browser", "chrome", "firefox":
		return TypeBrowser, nil
	case "windows":
		return TypeWindows, nil
	default:
		return "", fmt.Errorf("instance type must be one of ubuntu, browser, windows; got %q", name)
	}
}

// Valid reports whether t is one of the types the service accepts.
func (t Type) Valid() bool {
	switch t {
	case TypeUbuntu, TypeBrowser, TypeWindows:
		return true
	}
	return false
}

// Details describes a running or stopped instance.
type Details struct {
	ID           string `json:"id"`
	LaunchTime   string `json:"launch_time"`
	InstanceType Type   `json:"instance_type"`
	Status       string `json:"status"`
	Resolution   []int  `json:"resolution,omitempty"`
}

type ScreenshotResponse struct {
	Base64Image string `json:"base64_image"`
}

type StreamURLResponse struct {
	StreamURL string `json:"stream_url"`
}

// CommandResponse is the result of a bash, file or computer command.
type CommandResponse struct {
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
	Base64Image string `json:"base64_image,omitempty"`
	System      string `json:"system,omitempty"`
}

type UploadResponse struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
}

type StartParams struct {
	Type           Type
	TimeoutHours   core.Opt[float64]
	BlockedDomains core.Opt[[]string]
	// Resolution is [width, height].
	Resolution core.Opt[[]int]
}

type ResumeParams struct {
	TimeoutHours core.Opt[float64]
}

// BashParams drives the bash command. An empty Command is omitted, which is
// how restart, background process and kill requests are sent.
type BashParams struct {
	Command                string
	Wait                   core.Opt[bool]
	Restart                core.Opt[bool]
	GetBackgroundProcesses core.Opt[bool]
	KillPID                core.Opt[int]
}

// FileParams drives the file command. Which optional fields apply depends on
// Command.
type FileParams struct {
	Command        string
	Path           core.Opt[string]
	Content        core.Opt[string]
	Mode           core.Opt[string]
	Encoding       core.Opt[string]
	ViewRange      core.Opt[[]int]
	Recursive      core.Opt[bool]
	Src            core.Opt[string]
	Dst            core.Opt[string]
	OldStr         core.Opt[string]
	NewStr         core.Opt[string]
	Line           core.Opt[int]
	Text           core.Opt[string]
	Lines          core.Opt[[]int]
	AllOccurrences core.Opt[bool]
	Pattern        core.Opt[string]
	CaseSensitive  core.Opt[bool]
	LineNumbers    core.Opt[bool]
}

// ComputerParams drives the computer command. Which optional fields apply
// depends on Action.
type ComputerParams struct {
	Action      string
	Button      core.Opt[string]
	ClickType   core.Opt[string]
	Coordinates core.Opt[[]int]
	DeltaX      core.Opt[float64]
	DeltaY      core.Opt[float64]
	NumClicks   core.Opt[int]
	HoldKeys    core.Opt[[]string]
	Path        core.Opt[[][]int]
	Keys        core.Opt[[]string]
	Text        core.Opt[string]
	Duration    core.Opt[float64]
	Screenshot  core.Opt[bool]
}

func (p BashParams) fields() core.Fields {
	command := core.Value(p.Command)
	if p.Command == "" {
		command = core.Opt[string]{}
	}
	return core.Fields{
		"command":                  command,
		"wait":                     p.Wait,
		"restart":                  p.Restart,
		"get_background_processes": p.GetBackgroundProcesses,
		"kill_pid":                 p.KillPID,
	}
}

func (p FileParams) fields() core.Fields {
	return core.Fields{
		"command":         p.Command,
		"path":            p.Path,
		"content":         p.Content,
		"mode":            p.Mode,
		"encoding":        p.Encoding,
		"view_range":      p.ViewRange,
		"recursive":       p.Recursive,
		"src":             p.Src,
		"dst":             p.Dst,
		"old_str":         p.OldStr,
		"new_str":         p.NewStr,
		"line":            p.Line,
		"text":            p.Text,
		"lines":           p.Lines,
		"all_occurrences": p.AllOccurrences,
		"pattern":         p.Pattern,
		"case_sensitive":  p.CaseSensitive,
		"line_numbers":    p.LineNumbers,
	}
}

func (p ComputerParams) fields() core.Fields {
	return core.Fields{
		"action":      p.Action,
		"button":      p.Button,
		"click_type":  p.ClickType,
		"coordinates": p.Coordinates,
		"delta_x":     p.DeltaX,
		"delta_y":     p.DeltaY,
		"num_clicks":  p.NumClicks,
		"hold_keys":   p.HoldKeys,
		"path":        p.Path,
		"keys":        p.Keys,
		"text":        p.Text,
		"duration":    p.Duration,
		"screenshot":  p.Screenshot,
	}
}
