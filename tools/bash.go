package tools

import (
	"context"
	"errors"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

const BashToolName = "bash"

// BashArgs are the arguments of the bash tool. Unset fields are not sent.
type BashArgs struct {
	Command                string `json:"command,omitempty" description:"Shell command to run."`
	Wait                   *bool  `json:"wait,omitempty" description:"Wait for the command to finish. Defaults to true."`
	Restart                bool   `json:"restart,omitempty" description:"Restart the shell session."`
	GetBackgroundProcesses bool   `json:"get_background_processes,omitempty" description:"List background processes."`
	KillPID                int    `json:"kill_pid,omitempty" description:"Process id to kill."`
}

func (a BashArgs) Validate() error {
	if a.Command == "" && !a.Restart && !a.GetBackgroundProcesses && a.KillPID == 0 {
		return errors.New("one of command, restart, get_background_processes or kill_pid is required")
	}
	return nil
}

func (a BashArgs) params() instance.BashParams {
	params := instance.BashParams{
		Command:                a.Command,
		Restart:                optNonZero(a.Restart),
		GetBackgroundProcesses: optNonZero(a.GetBackgroundProcesses),
		KillPID:                optNonZero(a.KillPID),
	}
	if a.Wait != nil {
		params.Wait = core.Value(*a.Wait)
	}
	return params
}

var bashTool = mustTool(BashToolName,
	"Run shell commands on the instance.",
	BashArgs{})

// Bash runs shell commands on one instance.
type Bash struct {
	api        API
	instanceID string
}

func NewBash(api API, instanceID string) *Bash {
	return &Bash{api: api, instanceID: instanceID}
}

func (b *Bash) Tool() act.Tool { return bashTool }

func (b *Bash) Call(ctx context.Context, args map[string]any) (any, error) {
	parsed, err := decodeArgs[BashArgs](args)
	if err != nil {
		return nil, err
	}
	return b.Do(ctx, parsed)
}

func (b *Bash) Do(ctx context.Context, args BashArgs) (*instance.CommandResponse, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return b.api.Bash(ctx, b.instanceID, args.params())
}

// Execute runs command and waits for it to finish.
func (b *Bash) Execute(ctx context.Context, command string) (*instance.CommandResponse, error) {
	wait := true
	return b.Do(ctx, BashArgs{Command: command, Wait: &wait})
}

// Background starts command without waiting for it.
func (b *Bash) Background(ctx context.Context, command string) (*instance.CommandResponse, error) {
	wait := false
	return b.Do(ctx, BashArgs{Command: command, Wait: &wait})
}

func (b *Bash) Restart(ctx context.Context) (*instance.CommandResponse, error) {
	return b.Do(ctx, BashArgs{Restart: true})
}

func (b *Bash) BackgroundProcesses(ctx context.Context) (*instance.CommandResponse, error) {
	return b.Do(ctx, BashArgs{GetBackgroundProcesses: true})
}

func (b *Bash) Kill(ctx context.Context, pid int) (*instance.CommandResponse, error) {
	if pid <= 0 {
		return nil, errors.New("pid must be positive")
	}
	return b.Do(ctx, BashArgs{KillPID: pid})
}
