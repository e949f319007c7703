package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

const EditToolName = "str_replace_editor"

const (
	EditCreate  = "create"
	EditView    = "view"
	EditReplace = "replace"
	EditInsert  = "insert"
	EditAppend  = "append"
	EditDelete  = "delete"
)

// EditArgs are the arguments of the edit tool.
type EditArgs struct {
	Command    string  `json:"command" enum:"create,view,replace,insert,append,delete" description:"File operation to run."`
	Path       string  `json:"path" description:"Absolute path of the file."`
	FileText   string  `json:"file_text,omitempty" description:"Content of the new file for create."`
	ViewRange  []int   `json:"view_range,omitempty" description:"Lines to show for view as [start, end]."`
	OldStr     string  `json:"old_str,omitempty" description:"Text to replace for replace."`
	NewStr     *string `json:"new_str,omitempty" description:"Replacement text for replace."`
	InsertLine *int    `json:"insert_line,omitempty" description:"Line after which text is inserted for insert."`
	Text       string  `json:"text,omitempty" description:"Text for insert and append."`
}

func (a EditArgs) Validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return errors.New("path is required")
	}

	switch a.Command {
	case EditCreate:
		if a.FileText == "" {
			return errors.New("file_text is required for create command")
		}
	case EditReplace:
		if a.OldStr == "" || a.NewStr == nil {
			return errors.New("old_str and new_str are required for replace command")
		}
	case EditInsert:
		if a.InsertLine == nil || a.Text == "" {
			return errors.New("insert_line and text are required for insert command")
		}
	case EditAppend:
		if a.Text == "" {
			return errors.New("text is required for append command")
		}
	case EditView, EditDelete:
	case "":
		return errors.New("command is required")
	default:
		return fmt.Errorf("unknown edit command %q", a.Command)
	}
	return nil
}

// params keeps only the fields the command reads.
func (a EditArgs) params() instance.FileParams {
	params := instance.FileParams{
		Command: a.Command,
		Path:    core.Value(a.Path),
	}

	switch a.Command {
	case EditCreate:
		params.Content = core.Value(a.FileText)
	case EditView:
		params.ViewRange = optSlice(a.ViewRange)
	case EditReplace:
		params.OldStr = core.Value(a.OldStr)
		params.NewStr = core.Value(*a.NewStr)
	case EditInsert:
		params.Line = core.Value(*a.InsertLine)
		params.Text = core.Value(a.Text)
	case EditAppend:
		params.Text = core.Value(a.Text)
	}
	return params
}

var editTool = mustTool(EditToolName,
	"Create, view and edit files on the instance.",
	EditArgs{})

// Edit changes files on one instance through the file command.
type Edit struct {
	api        API
	instanceID string
}

func NewEdit(api API, instanceID string) *Edit {
	return &Edit{api: api, instanceID: instanceID}
}

func (e *Edit) Tool() act.Tool { return editTool }

func (e *Edit) Call(ctx context.Context, args map[string]any) (any, error) {
	parsed, err := decodeArgs[EditArgs](args)
	if err != nil {
		return nil, err
	}
	return e.Do(ctx, parsed)
}

func (e *Edit) Do(ctx context.Context, args EditArgs) (*instance.CommandResponse, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return e.api.File(ctx, e.instanceID, args.params())
}

func (e *Edit) Create(ctx context.Context, path, content string) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditCreate, Path: path, FileText: content})
}

// View shows the file, or only the lines in viewRange when it is set.
func (e *Edit) View(ctx context.Context, path string, viewRange []int) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditView, Path: path, ViewRange: viewRange})
}

func (e *Edit) Replace(ctx context.Context, path, oldStr, newStr string) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditReplace, Path: path, OldStr: oldStr, NewStr: &newStr})
}

func (e *Edit) Insert(ctx context.Context, path string, line int, text string) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditInsert, Path: path, InsertLine: &line, Text: text})
}

func (e *Edit) Append(ctx context.Context, path, text string) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditAppend, Path: path, Text: text})
}

func (e *Edit) Delete(ctx context.Context, path string) (*instance.CommandResponse, error) {
	return e.Do(ctx, EditArgs{Command: EditDelete, Path: path})
}
