package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"heritage/internal/agent"
	"heritage/internal/cli"
	"heritage/internal/hook"
	"heritage/internal/hook/handlers"
	"heritage/internal/report"
	"heritage/internal/tool/builtin"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		location  string
		structure string
		viz       string
		confirm   bool
	)
	cmd := &cobra.Command{
		Use:   "run [request]",
		Short: "Run one analysis in the terminal",
		Long:  "Runs one analysis. Without a request, the default request for --structure and --viz is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := cli.NewRenderer(os.Stdout)
			renderer.SetColorMode(!noColor)

			request := strings.TrimSpace(strings.Join(args, " "))
			structure = strings.TrimSpace(structure)
			viz = strings.TrimSpace(viz)
			if err := checkKind(viz); err != nil {
				renderer.Warning(err.Error())
				return err
			}
			if request == "" && structure != "" {
				request = report.DefaultRequest(structure, viz)
			}
			if structure == "" || request == "" {
				renderer.Warning(report.MissingInputWarning)
				return errors.New("missing structure name or request")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			a, err := newAgent(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			progress := handlers.NewProgressReporter(renderer.Step)
			input := &agent.Input{
				Request: request,
				Context: agent.InvocationContext{
					Location:          location,
					StructureName:     structure,
					VisualizationType: viz,
				},
				Handlers: []hook.Handler{progress},
			}
			if h := confirmHandler(confirm, cfg.Hooks.ToolConfirm); h != nil {
				input.Handlers = append(input.Handlers, h)
			}

			out, err := a.Run(cmd.Context(), input)
			if err != nil {
				renderer.Error(err.Error())
				return err
			}
			analysis, err := report.New(out, progress.Steps())
			if err != nil {
				return err
			}
			renderer.Analysis(analysis)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&location, "location", report.DefaultLocation, "Region of the heritage")
	flags.StringVar(&structure, "structure", report.DefaultStructureName, "Artist or heritage name")
	flags.StringVar(&viz, "viz", builtin.KindTimeline, "Visualization kind: "+strings.Join(builtin.Kinds, ", "))
	flags.BoolVar(&confirm, "confirm", false, "Ask before every tool call")
	return cmd
}

// checkKind rejects visualization kinds the generator does not know.
func checkKind(kind string) error {
	if !slices.Contains(builtin.Kinds, kind) {
		return fmt.Errorf("지원하지 않는 시각화 형식입니다: %s (%s)", kind, strings.Join(builtin.Kinds, ", "))
	}
	return nil
}

// confirmHandler builds the terminal confirmation hook. The flag confirms
// every tool; otherwise the configured list applies, with "*" meaning all.
func confirmHandler(all bool, configured []string) hook.Handler {
	if all {
		return handlers.NewToolConfirmHandler()
	}
	if len(configured) == 0 {
		return nil
	}
	for _, name := range configured {
		if name == "*" {
			return handlers.NewToolConfirmHandler()
		}
	}
	return handlers.NewToolConfirmHandler(configured...)
}
