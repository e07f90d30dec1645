package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/client/app"
	"github.com/fastygo/taskboard/client/dashboard"
	"github.com/fastygo/taskboard/client/navigation"
	"github.com/fastygo/taskboard/domain"
)

func statusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.commandContext(cmd.Context())
			defer cancel()
			out, err := rt.app.Dispatcher().ExecuteQuery(ctx, app.QuerySession, nil)
			if err != nil {
				return err
			}
			renderState(cmd.OutOrStdout(), out.(navigation.State))
			return nil
		},
	}
}

func signUpCmd(rt *runtime) *cobra.Command {
	return credentialsCmd(rt, "signup <email>", "Create an account and sign in", app.CmdSignUp)
}

func signInCmd(rt *runtime) *cobra.Command {
	return credentialsCmd(rt, "signin <email>", "Sign in with email and password", app.CmdSignIn)
}

func credentialsCmd(rt *runtime, use, short, command string) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				read, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = read
			}

			ctx, cancel := rt.commandContext(cmd.Context())
			defer cancel()
			out, err := rt.app.Dispatcher().ExecuteCommand(ctx, command, domain.Credentials{Email: args[0], Password: password})
			if state, ok := out.(navigation.State); ok {
				renderState(cmd.OutOrStdout(), state)
			}
			return userError(err)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func signOutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.commandContext(cmd.Context())
			defer cancel()
			if _, err := rt.app.Dispatcher().ExecuteCommand(ctx, app.CmdSignOut, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func listCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show your tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runDashboard(cmd, func() (interface{}, error) {
				ctx, cancel := rt.commandContext(cmd.Context())
				defer cancel()
				return rt.app.Dispatcher().ExecuteQuery(ctx, app.QueryDashboard, nil)
			})
		},
	}
}

func addCmd(rt *runtime) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := app.TaskInput{Title: strings.Join(args, " "), Description: description}
			return rt.runDashboard(cmd, func() (interface{}, error) {
				ctx, cancel := rt.commandContext(cmd.Context())
				defer cancel()
				return rt.app.Dispatcher().ExecuteCommand(ctx, app.CmdTaskCreate, input)
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	return cmd
}

func toggleCmd(rt *runtime) *cobra.Command {
	return taskIDCmd(rt, "toggle <id>", "Mark a task done or not done", app.CmdTaskToggle)
}

func deleteCmd(rt *runtime) *cobra.Command {
	cmd := taskIDCmd(rt, "delete <id>", "Delete a task", app.CmdTaskDelete)
	cmd.Aliases = []string{"rm"}
	return cmd
}

func taskIDCmd(rt *runtime, use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runDashboard(cmd, func() (interface{}, error) {
				ctx, cancel := rt.commandContext(cmd.Context())
				defer cancel()
				return rt.app.Dispatcher().ExecuteCommand(ctx, command, args[0])
			})
		},
	}
}

// runDashboard runs a dashboard action and renders whatever snapshot came back,
// including the list that was kept after a failed action.
func (rt *runtime) runDashboard(cmd *cobra.Command, run func() (interface{}, error)) error {
	out, err := run()
	snap, ok := out.(dashboard.Snapshot)
	if !ok {
		return err
	}
	if snap.Redirect == domain.ViewSignIn {
		return errors.New("not signed in, run `taskboard signin <email>` first")
	}
	renderSnapshot(cmd.OutOrStdout(), snap)
	return userError(err)
}

// userError returns the message a user should see, without wrapped causes.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(domain.MessageOf(err))
}

func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
