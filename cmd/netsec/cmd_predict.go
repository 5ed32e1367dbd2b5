package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/askiada/netsec-pipeline/internal/estimator"
	"github.com/askiada/netsec-pipeline/internal/frame"
)

var predictFlags struct {
	file   string
	model  string
	output string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a label for every row of a CSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		modelPath := predictFlags.model
		if modelPath == "" {
			modelPath = finalModelPath(cfg)
		}
		model, err := estimator.LoadNetworkModel(modelPath)
		if err != nil {
			return err
		}

		input, err := frame.ReadCSVFile(predictFlags.file)
		if err != nil {
			return err
		}
		out, err := model.PredictTable(cmd.Context(), input)
		if err != nil {
			return err
		}

		output := predictFlags.output
		if output == "" {
			output = filepath.Join(cfg.PredictionOutputDir, uuid.NewString()+".csv")
		}
		err = out.WriteCSVFile(output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d predictions written to %s\n", out.NumRows(), output)

		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictFlags.file, "file", "", "CSV file to score")
	predictCmd.Flags().StringVar(&predictFlags.model, "model", "", "Inference object, defaults to the published model")
	predictCmd.Flags().StringVar(&predictFlags.output, "output", "", "Output CSV, defaults to a new file in PREDICTION_OUTPUT_DIR")
	_ = predictCmd.MarkFlagRequired("file")
}
