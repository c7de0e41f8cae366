// Command redispoll is a small diagnostic CLI around the client library.
// Configuration comes from REDISPOLL_* environment variables (and an
// optional .env.local file), with flags taking precedence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arens-io/redispoll"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "redispoll",
		Short:         "Poll-based Redis client diagnostics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("addr", "", "server address (host:port)")
	flags.Bool("resp3", false, "use the RESP3 protocol")
	flags.Duration("timeout", 0, "per-response timeout (0 waits forever)")
	flags.Bool("debug", false, "log connection lifecycle events")

	rootCmd.AddCommand(
		getCmd(),
		setCmd(),
		pingCmd(),
		publishCmd(),
		subscribeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *redispoll.Client) error {
				future, err := client.Get(args[0])
				if err != nil {
					return err
				}
				response, err := future.Wait()
				if err != nil {
					return err
				}
				if response == nil {
					fmt.Println("(nil)")
					return nil
				}
				fmt.Println(response.String())
				return nil
			})
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *redispoll.Client) error {
				future, err := client.Set(args[0], args[1])
				if err != nil {
					return err
				}
				response, err := future.Wait()
				if err != nil {
					return err
				}
				if !response.Stored {
					fmt.Println("(not stored)")
					return nil
				}
				fmt.Println("OK")
				return nil
			})
		},
	}
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Round-trip a PING through the connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *redispoll.Client) error {
				future, err := client.Ping()
				if err != nil {
					return err
				}
				if _, err := future.Wait(); err != nil {
					return err
				}
				fmt.Println("PONG")
				return nil
			})
		},
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <channel> <message>",
		Short: "Publish a message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *redispoll.Client) error {
				future, err := client.Publish(args[0], args[1])
				if err != nil {
					return err
				}
				receivers, err := future.Wait()
				if err != nil {
					return err
				}
				fmt.Printf("delivered to %d subscriber(s)\n", receivers)
				return nil
			})
		},
	}
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <channel>...",
		Short: "Subscribe to channels and print published messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *redispoll.Client) error {
				sub, err := client.Subscribe(args...)
				if err != nil {
					return err
				}
				defer sub.Unsubscribe()

				for {
					message, err := sub.Receive()
					if err != nil {
						return err
					}
					if message == nil {
						continue
					}
					fmt.Printf("[%s] %s\n", message.Channel, message.Payload)
				}
			})
		},
	}
}

// withClient builds a handler from environment plus flags, connects, runs
// fn and tears the connection down afterwards.
func withClient(cmd *cobra.Command, fn func(*redispoll.Client) error) error {
	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	handler := redispoll.NewConnectionHandler(*config)
	defer handler.Disconnect()

	client, err := handler.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(client)
}

func buildConfig(cmd *cobra.Command) (*redispoll.Config, error) {
	config, err := redispoll.LoadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if addr, _ := flags.GetString("addr"); addr != "" {
		config.Addr = addr
	}
	if resp3, _ := flags.GetBool("resp3"); resp3 {
		config.RESP3 = true
	}
	if timeout, _ := flags.GetDuration("timeout"); timeout > 0 {
		config.Timeout = timeout
	}
	if debug, _ := flags.GetBool("debug"); debug {
		logger, err := newDebugLogger()
		if err != nil {
			return nil, err
		}
		config.Logger = logger
	}

	return config, nil
}
