package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
		wantJSON  bool
	}{
		{env: "local", wantDebug: true, wantJSON: false},
		{env: "dev", wantDebug: true, wantJSON: true},
		{env: "prod", wantDebug: false, wantJSON: true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := setupLogger(tt.env, &buf)

			log.Debug("debug line")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))

			buf.Reset()
			log.Info("account created", "account_id", 7)
			require.NotZero(t, buf.Len())
			if tt.wantJSON {
				var line map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
				assert.Equal(t, "account created", line["msg"])
				assert.Equal(t, float64(7), line["account_id"])
			} else {
				assert.Contains(t, buf.String(), "account created")
				assert.Contains(t, buf.String(), "account_id")
			}
		})
	}
}
