package main

import (
	"fmt"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ytget/ytapi/service"
)

func (c *cli) downloadCmd() *cobra.Command {
	var itag, output string
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download one stream of a video into a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			return svc.Download(cmd.Context(), args[0], itag, func(a *service.Attachment) error {
				target := filepath.Join(output, a.Name)
				if err := afero.WriteReader(c.fs, target, a.Content); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				cmd.Printf("%s (%d bytes)\n", target, a.Size)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&itag, "itag", "", "itag of the stream (see the streams command)")
	f.StringVarP(&output, "output", "o", ".", "output directory")
	lo.Must0(cmd.MarkFlagRequired("itag"))
	return cmd
}
