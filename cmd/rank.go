package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/rank"
)

var (
	rankSubjectPath string
	rankQuery       string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Resolve a subject's search rank and leaders",
	Long:  "Resolves where the subject ranks in live search results for its highest-value query, loosening the query until a meaningful comparison set exists. Pass --query to skip query generation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// With an explicit query only the search capability is needed.
		mode := "rank"
		if rankQuery != "" {
			mode = "search"
		}

		env, err := initEnv(cmd.Context(), mode)
		if err != nil {
			return err
		}
		defer env.Close()

		in, err := readSubjectFile(rankSubjectPath)
		if err != nil {
			return err
		}

		var result *rank.Result
		if rankQuery != "" {
			result, err = env.Resolver.Evaluate(cmd.Context(), in.Subject, rankQuery)
		} else {
			result, err = env.Resolver.Resolve(cmd.Context(), in.Subject)
		}
		if err != nil {
			return err
		}
		if result == nil {
			zap.L().Warn("subject skipped, no rank resolved")
			return nil
		}

		return printJSON(result)
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankSubjectPath, "subject", "", "path to subject JSON file (required)")
	rankCmd.Flags().StringVar(&rankQuery, "query", "", "use this search query instead of generating one")
	rankCmd.MarkFlagRequired("subject") //nolint:errcheck
	rootCmd.AddCommand(rankCmd)
}
