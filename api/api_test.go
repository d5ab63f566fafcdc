package api_test

import (
	"encoding/json"
	"testing"

	"github.com/programme-lv/cpkit/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileErrorMessageAndReportStatus(t *testing.T) {
	msg := api.NewCompileError("job-1", "error: expected ';'")
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "job-1", got["job_id"])
	assert.Equal(t, string(api.CompileErrorMsg), got["msg_type"])
	assert.Equal(t, "error: expected ';'", got["error_message"])

	rep := api.Report{Status: api.StatusCompileError}
	b, err = json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"compile_error"`)
	assert.Equal(t, api.ExecStatus("success"), api.StatusSuccess)
	assert.Equal(t, api.ExecStatus("interrupted"), api.StatusInterrupted)
}
