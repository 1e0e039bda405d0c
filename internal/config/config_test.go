package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/storoid/internal/config"
)

func TestDecode_ValidClusterConfig(t *testing.T) {
	var cc config.ClusterConfig
	err := config.Decode([]byte(`
hosts:
  - 10.0.0.1
  - 10.0.0.2
username: storoid
protoVersion: 4
`), &cc)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cc.Hosts)
	assert.Equal(t, "storoid", cc.Username)
	assert.Equal(t, 4, cc.ProtoVersion)
}

func TestDecode_MissingRequiredFieldFails(t *testing.T) {
	var cc config.ClusterConfig
	err := config.Decode([]byte(`username: storoid`), &cc)
	assert.Error(t, err)
}

func TestDecode_UnknownFieldRejectedByStrictMode(t *testing.T) {
	var cc config.ClusterConfig
	err := config.Decode([]byte(`
hosts: [10.0.0.1]
bogusField: true
`), &cc)
	assert.Error(t, err)
}

func TestDecodeFile_MissingFile(t *testing.T) {
	var cc config.ClusterConfig
	err := config.DecodeFile("/no/such/path.yaml", &cc)
	assert.Error(t, err)
}
