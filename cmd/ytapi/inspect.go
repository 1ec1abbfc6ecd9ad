package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Print the metadata document of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			info, err := svc.Metadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
}

func (c *cli) streamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streams <url>",
		Short: "Print the ranked stream list of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			list, err := svc.Streams(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}
}
