package server_test

import (
	"testing"

	"identity-reconciler/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     server.Config
		wantErr bool
	}{
		{"Defaults", server.Config{Port: "8080", BodyLimit: 65536}, false},
		{"No Body Limit", server.Config{Port: "3000"}, false},
		{"Empty Port", server.Config{}, true},
		{"Negative Body Limit", server.Config{Port: "8080", BodyLimit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
