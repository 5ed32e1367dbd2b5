package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askiada/netsec-pipeline/internal/datasource"
	"github.com/askiada/netsec-pipeline/internal/frame"
)

var pushFlags struct {
	file string
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Insert the rows of a CSV file into the document store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := cfg.Validate()
		if err != nil {
			return err
		}
		t, err := frame.ReadCSVFile(pushFlags.file)
		if err != nil {
			return err
		}

		sink := datasource.MongoSink{
			URI:        cfg.Mongo.URL,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}
		n, err := sink.Push(cmd.Context(), t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d records inserted into %s.%s\n", n, cfg.Mongo.Database, cfg.Mongo.Collection)

		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushFlags.file, "file", "", "CSV file to insert")
	_ = pushCmd.MarkFlagRequired("file")
}
