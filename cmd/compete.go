package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/competitor"
)

var competeSubjectPath string

var competeCmd = &cobra.Command{
	Use:   "compete",
	Short: "Select and store a subject's competitor set",
	Long:  "Runs the tiered competitor selection for the subject described in --subject and replaces its stored competitor set with the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "compete")
		if err != nil {
			return err
		}
		defer env.Close()

		in, err := readSubjectFile(competeSubjectPath)
		if err != nil {
			return err
		}

		records, err := env.Selector.Run(cmd.Context(), in.Subject, in.Snapshot)
		if err != nil {
			return err
		}
		if records == nil {
			zap.L().Warn("subject skipped, nothing selected")
			records = []competitor.Record{}
		}

		return printJSON(records)
	},
}

func init() {
	competeCmd.Flags().StringVar(&competeSubjectPath, "subject", "", "path to subject JSON file (required)")
	competeCmd.MarkFlagRequired("subject") //nolint:errcheck
	rootCmd.AddCommand(competeCmd)
}
