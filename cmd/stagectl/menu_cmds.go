package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/action-stage/pkg/choice"
	"github.com/jwebster45206/action-stage/pkg/menu"
)

func newParseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse raw generator output into a menu",
		Long:  "Reads generator output from a file or stdin and prints the menu as it would be shown, or its state record with --json.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			raw, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			m := menu.Parse(raw)
			if asJSON {
				blob, err := menu.Encode(m)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(blob))
				return err
			}

			text, ok := menu.Present(m)
			if !ok {
				return errors.New(menu.NoActionsAdvisory)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the state record instead of the menu text")
	return cmd
}

type resolveOutput struct {
	Resolution choice.Resolution `json:"resolution"`
	Directive  choice.Directive  `json:"directive"`
}

func newResolveCmd() *cobra.Command {
	var (
		state   string
		choices string
	)

	cmd := &cobra.Command{
		Use:   "resolve <message>",
		Short: "Resolve a reply against a menu",
		Example: `  stagectl resolve --choices "Open the door|Knock|Leave" 2
  stagectl resolve --state '{"choices":["Knock loudly"]}' knock`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m menu.Menu
			switch {
			case state != "" && choices != "":
				return fmt.Errorf("use either --state or --choices, not both")
			case state != "":
				restored, err := menu.Decode(json.RawMessage(state))
				if err != nil {
					return err
				}
				m = restored
			default:
				m = menu.New(splitChoices(choices)...)
			}

			res := choice.Resolve(strings.Join(args, " "), m)
			return printJSON(cmd, resolveOutput{
				Resolution: res,
				Directive:  choice.BuildDirective(res),
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "menu state record, as stored between turns")
	cmd.Flags().StringVar(&choices, "choices", "", "menu entries separated by |")
	return cmd
}
