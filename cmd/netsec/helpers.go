package main

import (
	"path/filepath"

	"github.com/askiada/netsec-pipeline/internal/config"
	"github.com/askiada/netsec-pipeline/internal/datasource"
	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/schema"
	"github.com/askiada/netsec-pipeline/internal/trainpipe"
)

// newSource reads file when set, else the configured collection.
func newSource(c config.Config, file string) (datasource.Source, error) {
	if file != "" {
		return datasource.CSVSource{Path: file}, nil
	}
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	return datasource.MongoSource{
		URI:        c.Mongo.URL,
		Database:   c.Mongo.Database,
		Collection: c.Mongo.Collection,
	}, nil
}

func newRunner(c config.Config, file string, opts ...trainpipe.Option) (trainpipe.Runner, error) {
	source, err := newSource(c, file)
	if err != nil {
		return trainpipe.Runner{}, err
	}
	sch, err := schema.Load(c.SchemaFile)
	if err != nil {
		return trainpipe.Runner{}, err
	}

	return trainpipe.Runner{
		ArtifactRoot:  c.ArtifactRoot,
		FinalModelDir: c.FinalModelDir,
		Source:        source,
		Schema:        sch,
		Options:       append([]trainpipe.Option{trainpipe.WithSplitSeed(c.SplitSeed)}, opts...),
	}, nil
}

func finalModelPath(c config.Config) string {
	return filepath.Join(c.FinalModelDir, entity.FinalModelFileName)
}
