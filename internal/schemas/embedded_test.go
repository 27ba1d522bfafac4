package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestEmbeddedSchemas_ValidJSONSchema(t *testing.T) {
	files, err := fs.Glob(schemaFiles, "*.schema.json")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		OptimizationReply + ".schema.json",
		ParsedDocument + ".schema.json",
	}, files)

	for _, schemaFile := range files {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := schemaFiles.ReadFile(schemaFile)
			require.NoError(t, err)

			var schemaObj map[string]any
			require.NoError(t, json.Unmarshal(data, &schemaObj))
			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Equal(t, "object", schemaObj["type"])

			// compiling resolves every $ref
			_, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			assert.NoError(t, err)
		})
	}
}
