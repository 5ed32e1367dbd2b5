package component_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/schema"
)

func pipelineConfig(t *testing.T) entity.TrainingPipelineConfig {
	t.Helper()

	dir := t.TempDir()
	pc, err := entity.NewTrainingPipelineConfig(filepath.Join(dir, "Artifacts"), "01_02_2026_10_00_00", filepath.Join(dir, "final_model"))
	require.NoError(t, err)

	return pc
}

func defaultSchema(t *testing.T) *schema.Schema {
	t.Helper()

	sch, err := schema.Default()
	require.NoError(t, err)

	return sch
}
