package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/askiada/netsec-pipeline/internal/entity"
)

var trainFlags struct {
	file string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the training pipeline once and publish the best model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		runner, err := newRunner(cfg, trainFlags.file)
		if err != nil {
			return err
		}

		runID := entity.NewRunID(time.Now())
		artifact, err := runner.Run(cmd.Context(), runID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s trained, test F1 %.4f, model at %s\n",
			runID, artifact.ModelName, artifact.TestMetric.F1Score, artifact.TrainedModelFilePath)

		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFlags.file, "file", "", "Read records from this CSV file instead of the document store")
}
