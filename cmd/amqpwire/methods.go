package main

import (
	"fmt"

	"github.com/danmuck/amqpwire/internal/protocol/schema"
	"github.com/spf13/cobra"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the method signatures amqpwire can encode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range schema.Methods() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}
