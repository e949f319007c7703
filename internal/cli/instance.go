package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	scrapybara "github.com/m43i/go-scrapybara"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

type instanceView struct {
	ID           string                  `json:"id"`
	InstanceType string                  `json:"instance_type"`
	Status       string                  `json:"status"`
	LaunchTime   string                  `json:"launch_time,omitempty"`
	Capabilities []scrapybara.Capability `json:"capabilities"`
}

func viewOf(inst *scrapybara.Instance) instanceView {
	return instanceView{
		ID:           inst.ID,
		InstanceType: string(inst.Kind),
		Status:       inst.Status,
		LaunchTime:   inst.LaunchTime,
		Capabilities: inst.Capabilities(),
	}
}

func newStartCmd(opts *Options) *cobra.Command {
	var (
		timeoutHours   float64
		blockedDomains []string
		resolution     []int
	)

	cmd := &cobra.Command{
		Use:   "start <ubuntu|browser|windows>",
		Short: "Start a new instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := scrapybara.ParseKind(args[0])
			if err != nil {
				return err
			}
			if len(resolution) != 0 && len(resolution) != 2 {
				return fmt.Errorf("resolution needs width and height, got %d values", len(resolution))
			}

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			var params scrapybara.StartParams
			if cmd.Flags().Changed("timeout-hours") {
				params.TimeoutHours = core.Value(timeoutHours)
			}
			if len(blockedDomains) > 0 {
				params.BlockedDomains = core.Value(blockedDomains)
			}
			if len(resolution) == 2 {
				params.Resolution = core.Value(resolution)
			}

			inst, err := s.client.Start(cmd.Context(), kind, params)
			if err != nil {
				return err
			}
			return s.print(cmd, viewOf(inst))
		},
	}

	cmd.Flags().Float64Var(&timeoutHours, "timeout-hours", 0, "Hours until the instance stops on its own")
	cmd.Flags().StringSliceVar(&blockedDomains, "blocked-domain", nil, "Domain the instance may not reach (repeatable)")
	cmd.Flags().IntSliceVar(&resolution, "resolution", nil, "Screen size as width,height")

	return cmd
}

func newGetCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <instance-id>",
		Short: "Show an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			inst, err := s.client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.print(cmd, viewOf(inst))
		},
	}
}

func newListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			list, err := s.client.List(cmd.Context())
			if err != nil {
				return err
			}

			views := make([]instanceView, 0, len(list))
			for _, inst := range list {
				views = append(views, viewOf(inst))
			}
			return s.print(cmd, views)
		},
	}
}

func newStopCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <instance-id>",
		Short: "Stop an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			resp, err := s.client.Instance().Stop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.print(cmd, resp)
		},
	}
}

func newBashCmd(opts *Options) *cobra.Command {
	var background bool

	cmd := &cobra.Command{
		Use:   "bash <instance-id> <command...>",
		Short: "Run a shell command on an instance",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			resp, err := s.client.Instance().Bash(cmd.Context(), args[0], instance.BashParams{
				Command: strings.Join(args[1:], " "),
				Wait:    core.Value(!background),
			})
			if err != nil {
				return err
			}
			return s.print(cmd, resp)
		},
	}

	cmd.Flags().BoolVar(&background, "background", false, "Do not wait for the command to finish")

	return cmd
}

func newScreenshotCmd(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "screenshot <instance-id>",
		Short: "Capture the instance screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			resp, err := s.client.Instance().Screenshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if file == "" {
				return s.print(cmd, resp)
			}

			image, err := base64.StdEncoding.DecodeString(resp.Base64Image)
			if err != nil {
				return fmt.Errorf("decode screenshot: %w", err)
			}
			if err := os.WriteFile(file, image, 0o644); err != nil {
				return fmt.Errorf("write screenshot: %w", err)
			}
			return s.print(cmd, map[string]any{"file": file, "bytes": len(image)})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write the decoded image to this path instead of printing it")

	return cmd
}
