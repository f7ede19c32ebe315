package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abezemskiy/eguard/internal/client/handlers"
	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/client/tui"
	"github.com/abezemskiy/eguard/internal/client/tui/app"
	"github.com/abezemskiy/eguard/internal/client/tui/home"
	"github.com/abezemskiy/eguard/internal/client/tui/ident/authcode"
	"github.com/abezemskiy/eguard/internal/client/tui/ident/authorize"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/spf13/cobra"
)

// newRootCmd - создает корневую команду клиента со всеми подкомандами.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eguard",
		Short:         "eGuard API client",
		Long:          `eguard keeps an authenticated session with the eGuard API and renews the access token transparently.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := parseVariables(); err != nil {
				return fmt.Errorf("failed to set global variables, %w", err)
			}
			// Инициализация логера
			return logger.Initialize(logLevel, logFile)
		},
	}
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newLoginCmd(),
		newWhoAmICmd(),
		newGetCmd(),
		newSendCmd(),
		newLogoutCmd(),
		newTUICmd(),
	)
	return rootCmd
}

// withClient - создает клиента на время выполнения команды.
func withClient(cmd *cobra.Command, fn func(c *client) error) error {
	c, err := newClient(cmd.Context(), cliNavigator{out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func newLoginCmd() *cobra.Command {
	var data handlers.LoginData

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to eGuard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *client) error {
				in := bufio.NewReader(cmd.InOrStdin())
				out := cmd.OutOrStdout()

				if data.Password == "" {
					password, err := prompt(in, out, "password: ")
					if err != nil {
						return err
					}
					data.Password = password
				}

				enabled, err := handlers.TwoFactorEnabled(cmd.Context(), c.session.Client, data.EmployeeEmail)
				if err != nil {
					return err
				}

				var ident token.SessionIdentity
				if enabled {
					if data.AuthCode == "" {
						if err := handlers.RequestAuthCode(cmd.Context(), c.session.Client, data.EmployeeEmail); err != nil {
							return err
						}
						code, err := prompt(in, out, "auth code sent to "+data.EmployeeEmail+": ")
						if err != nil {
							return err
						}
						data.AuthCode = code
					}
					ident, err = handlers.Login(cmd.Context(), c.session, data)
				} else {
					ident, err = handlers.LoginNo2FA(cmd.Context(), c.session, data)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "logged in as %s (%s)\n", ident.EmployeeName, ident.Role)
				if !c.durable {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: no credential storage configured, the session ends with this process")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&data.EmployeeEmail, "email", "e", "", "employee email")
	cmd.Flags().StringVarP(&data.Password, "password", "p", "", "employee password, asked if not set")
	cmd.Flags().StringVar(&data.AuthCode, "code", "", "two factor authentication code, requested if needed")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the identity from the current access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(c *client) error {
				ident, err := handlers.WhoAmI(c.store)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(ident, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <endpoint>",
		Short: "Send GET request to the API, for example `eguard get /area`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(c *client) error {
				body, err := handlers.Fetch(cmd.Context(), c.session.Client, args[0], nil)
				if err != nil {
					return err
				}
				return printBody(cmd.OutOrStdout(), body)
			})
		},
	}
}

func newSendCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "send <method> <endpoint>",
		Short: "Send POST, PUT, PATCH or DELETE request to the API",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("request body is not valid JSON")
				}
				body = json.RawMessage(data)
			}
			return withClient(cmd, func(c *client) error {
				resp, err := handlers.Send(cmd.Context(), c.session.Client, strings.ToUpper(args[0]), args[1], body, nil)
				if err != nil {
					return err
				}
				return printBody(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// При выходе по запросу пользователя сообщение о завершении сессии не нужно
			c, err := newClient(cmd.Context(), identity.NavigatorFunc(func(string) {}))
			if err != nil {
				return err
			}
			defer c.Close()

			if err := handlers.Logout(cmd.Context(), c.session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal user interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tuiApp *app.App
			// Приложение создается после сессии, навигатор обращается к нему при первом выходе
			nav := identity.NavigatorFunc(func(path string) {
				if tuiApp != nil {
					tuiApp.Navigate(path)
				}
			})

			c, err := newClient(cmd.Context(), nav)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			pending := &handlers.LoginData{}
			tuiApp = app.NewApp([]app.Primitives{
				{Name: tui.Login, Prim: authorize.LoginPage(ctx, c.session, pending)},
				{Name: tui.AuthCode, Prim: authcode.AuthCodePage(ctx, c.session, pending)},
				{Name: tui.Main, Protected: true, Prim: home.Page(ctx, c.session, c.store, home.DefaultSections())},
			}, c.store, tui.Login)
			tuiApp.RegisterView(session.DefaultRoutes().LoginView, tui.Login)

			// Восстановленная сессия сразу открывает главную страницу
			tuiApp.SwitchTo(tui.Main)
			return tuiApp.Run()
		},
	}
}

// prompt - выводит приглашение и читает строку ввода.
func prompt(in *bufio.Reader, out io.Writer, text string) (string, error) {
	fmt.Fprint(out, text)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input, %w", err)
	}
	return strings.TrimSpace(line), nil
}

// printBody - печатает тело ответа, JSON выводится с отступами.
func printBody(out io.Writer, body []byte) error {
	if len(body) == 0 {
		fmt.Fprintln(out, http.StatusText(http.StatusNoContent))
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		_, err := fmt.Fprintln(out, string(body))
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
