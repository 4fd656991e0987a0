package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-notes/internal/usecase"
)

func newLabelsCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the labels defined on the repository",
		Long:  `Lists the labels defined on the repository, one per line. No report is generated.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, logger, fetcher, err := global.setup()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			return usecase.NewLabelLister(fetcher, logger).List(cmd.Context(), cmd.OutOrStdout(), repo)
		},
	}
}
