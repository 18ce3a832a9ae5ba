package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/action-stage/internal/config"
	"github.com/jwebster45206/action-stage/internal/logger"
	"github.com/jwebster45206/action-stage/internal/services"
	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/actor"
	"github.com/jwebster45206/action-stage/pkg/chat"
	"github.com/jwebster45206/action-stage/pkg/prompts"
	"github.com/jwebster45206/action-stage/pkg/stage"
)

type rosterFlags struct {
	dataDir     string
	characterID string
	userID      string
}

func (f *rosterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataDir, "data", "./data", "profiles directory containing characters/ and users/")
	cmd.Flags().StringVar(&f.characterID, "character", "", "responding character ID")
	cmd.Flags().StringVar(&f.userID, "user", "", "addressed user ID (default: first user by ID)")
	_ = cmd.MarkFlagRequired("character")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPromptCmd() *cobra.Command {
	var flags rosterFlags

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the elicitation prompt for a character and user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := storage.LoadRoster(flags.dataDir, quietLogger())
			if err != nil {
				return err
			}
			stg, _ := stage.New(stage.InitialData{
				Characters: roster.Characters,
				Users:      roster.Users,
			}, nil, quietLogger())

			c, ok := stg.Character(flags.characterID)
			if !ok {
				return fmt.Errorf("%w: %q", stage.ErrUnknownCharacter, flags.characterID)
			}
			u, err := stg.User(flags.userID)
			if err != nil {
				return err
			}

			prompt, err := prompts.BuildElicitation(&c, &u, prompts.HistoryTag, prompts.InstructionsTag)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		flags       rosterFlags
		historyFile string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a menu with the configured LLM provider",
		Long:  "Loads configuration from the environment (and .env), builds the elicitation prompt and prints the resulting menu and state record.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.Setup(cfg)

			roster, err := storage.LoadRoster(flags.dataDir, log)
			if err != nil {
				return err
			}
			gen, err := services.NewGenerator(cfg, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if initializer, ok := gen.(services.ModelInitializer); ok {
				if err := initializer.InitModel(ctx); err != nil {
					return err
				}
			}

			var history []chat.ChatMessage
			if historyFile != "" {
				data, err := os.ReadFile(historyFile)
				if err != nil {
					return fmt.Errorf("failed to read history: %w", err)
				}
				if err := json.Unmarshal(data, &history); err != nil {
					return fmt.Errorf("failed to parse history: %w", err)
				}
			}

			stg, prior := stage.New(stage.InitialData{
				Characters: roster.Characters,
				Users:      roster.Users,
			}, gen, log)
			resp := stg.AfterResponse(ctx, prior, stage.Message{
				CharacterID: flags.characterID,
				PromptForID: flags.userID,
			}, history)

			return printJSON(cmd, resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&historyFile, "history", "", "JSON file with the chat history ([{role,name,content}])")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Strictly validate the character and user profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "./data"
			if len(args) == 1 {
				dir = args[0]
			}

			var problems []string
			checked := 0
			for _, kind := range []string{"characters", "users"} {
				err := filepath.WalkDir(filepath.Join(dir, kind), func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						if errors.Is(err, fs.ErrNotExist) {
							return fs.SkipDir
						}
						return err
					}
					if d.IsDir() {
						return nil
					}
					if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
						return nil
					}
					checked++
					if err := validateProfile(kind, path); err != nil {
						problems = append(problems, fmt.Sprintf("%s: %v", path, err))
					}
					return nil
				})
				if err != nil {
					return fmt.Errorf("failed to walk %s: %w", kind, err)
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("validation errors:\n%s", strings.Join(problems, "\n"))
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d profile(s) valid\n", checked)
			return err
		},
	}
	return cmd
}

func validateProfile(kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	switch kind {
	case "characters":
		var c actor.Character
		if err := dec.Decode(&c); err != nil {
			return err
		}
		return c.Validate()
	default:
		var u actor.User
		if err := dec.Decode(&u); err != nil {
			return err
		}
		return u.Validate()
	}
}
