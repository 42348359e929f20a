package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
	"github.com/cyberFlowTech/zapry-convpolicy-go/logging"
)

// app carries the flags and the injector shared by every subcommand.
type app struct {
	configPath string
	userID     string
	di         *do.Injector
}

func (a *app) engine() *convpolicy.Engine {
	return do.MustInvoke[*convpolicy.Engine](a.di)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tutorctl",
		Short:         "Conversation understanding and response policy engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Preinit()
			di, err := newInjector(a.configPath)
			if err != nil {
				return err
			}
			a.di = di
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.di == nil {
				return nil
			}
			return a.di.Shutdown()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVarP(&a.userID, "user", "u", convpolicy.AnonymousUser, "user id owning the profile")

	root.AddCommand(newClassifyCmd(a), newTurnCmd(a), newFeedbackCmd(a), newProfileCmd(a))
	return root
}

// ──────────────────────────────────────────────
// classify
// ──────────────────────────────────────────────

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify one message without touching any profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.engine().Classifier().Classify(args[0], nil)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

// ──────────────────────────────────────────────
// turn
// ──────────────────────────────────────────────

// conversationFile keeps a session and its history between invocations.
type conversationFile struct {
	Session *convpolicy.SessionState `json:"session"`
	History []convpolicy.Message     `json:"history"`
}

func loadConversation(path string) (*conversationFile, error) {
	conv := &conversationFile{}
	if path == "" {
		conv.Session = convpolicy.NewSessionState()
		return conv, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		conv.Session = convpolicy.NewSessionState()
		return conv, nil
	}
	if err != nil {
		return nil, oops.With("path", path).Wrapf(err, "read conversation")
	}
	if err := json.Unmarshal(data, conv); err != nil {
		return nil, oops.With("path", path).Wrapf(err, "parse conversation")
	}
	if conv.Session == nil {
		conv.Session = convpolicy.NewSessionState()
	}
	return conv, nil
}

func saveConversation(path string, conv *conversationFile) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return oops.Wrapf(err, "marshal conversation")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oops.With("path", path).Wrapf(err, "write conversation")
	}
	return nil
}

func newTurnCmd(a *app) *cobra.Command {
	var (
		convPath string
		reply    string
		prompt   bool
	)
	cmd := &cobra.Command{
		Use:   "turn <message>",
		Short: "Process one user turn and print the response policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine := a.engine()

			conv, err := loadConversation(convPath)
			if err != nil {
				return err
			}

			decision := engine.ProcessTurn(ctx, conv.Session, args[0], conv.History, a.userID)
			conv.History = append(conv.History, convpolicy.Message{
				Text: args[0], Role: convpolicy.RoleUser, Timestamp: decision.At,
			})
			if reply != "" {
				if err := engine.RecordResponse(ctx, a.userID, decision.InteractionID, reply); err != nil {
					return err
				}
				conv.History = append(conv.History, convpolicy.Message{
					Text: reply, Role: convpolicy.RoleAssistant, Timestamp: decision.At,
				})
			}

			if err := saveConversation(convPath, conv); err != nil {
				return err
			}
			if err := flush(ctx, engine, a.userID); err != nil {
				return err
			}

			if prompt {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), decision.FormatForPrompt())
				return err
			}
			return writeJSON(cmd.OutOrStdout(), decision)
		},
	}
	cmd.Flags().StringVar(&convPath, "conversation", "", "JSON file holding session and history across turns")
	cmd.Flags().StringVar(&reply, "reply", "", "assistant reply to record for this turn")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "print prompt text instead of JSON")
	return cmd
}

// ──────────────────────────────────────────────
// feedback
// ──────────────────────────────────────────────

func newFeedbackCmd(a *app) *cobra.Command {
	var (
		convPath string
		aspect   string
		comment  string
	)
	cmd := &cobra.Command{
		Use:   "feedback <interaction-id> <rating 1-5>",
		Short: "Rate a past interaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return oops.With("rating", args[1]).Wrapf(err, "rating must be a number")
			}

			conv, err := loadConversation(convPath)
			if err != nil {
				return err
			}

			engine := a.engine()
			fb := convpolicy.Feedback{InteractionID: args[0], Rating: rating, Aspect: aspect, Comment: comment}
			if !engine.ProcessFeedback(ctx, conv.Session, a.userID, fb) {
				return oops.With("interaction_id", args[0], "rating", rating).Errorf("feedback rejected")
			}
			if err := saveConversation(convPath, conv); err != nil {
				return err
			}
			if err := flush(ctx, engine, a.userID); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "feedback recorded")
			return err
		},
	}
	cmd.Flags().StringVar(&convPath, "conversation", "", "JSON file holding session and history across turns")
	cmd.Flags().StringVar(&aspect, "aspect", "", "flagged aspect: formality, length, vernacular, persona, content")
	cmd.Flags().StringVar(&comment, "comment", "", "free-form comment")
	return cmd
}

// ──────────────────────────────────────────────
// profile
// ──────────────────────────────────────────────

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Export, import or reset a user profile",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Print or save the user's profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.engine().ExportProfile(cmd.Context(), a.userID)
			if err != nil {
				return err
			}
			if out != "" {
				return os.WriteFile(out, data, 0o644)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the user's profile with an exported one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.With("path", args[0]).Wrapf(err, "read profile")
			}
			engine := a.engine()
			if err := engine.ImportProfile(cmd.Context(), a.userID, data); err != nil {
				return err
			}
			return flush(cmd.Context(), engine, a.userID)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the user's default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := a.engine()
			engine.ResetProfile(cmd.Context(), a.userID)
			return flush(cmd.Context(), engine, a.userID)
		},
	}

	profile.AddCommand(export, imp, reset)
	return profile
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
