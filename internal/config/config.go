// Package config decodes storoid's YAML-shaped inputs — the cluster
// connection descriptor and the admin CLI's request bodies — the way the
// teacher's source configs are decoded: strict YAML decoding followed by
// struct-tag validation.
package config

import (
	"bytes"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ClusterConfig is the top-level connection descriptor storoidctl reads
// from --config, mirroring internal/driver.Config's shape without its
// Timeout and NumConns fields.
type ClusterConfig struct {
	Hosts                  []string `yaml:"hosts" validate:"required"`
	Username               string   `yaml:"username"`
	Password               string   `yaml:"password"`
	ProtoVersion           int      `yaml:"protoVersion"`
	CAPath                 string   `yaml:"caPath"`
	CertPath               string   `yaml:"certPath"`
	KeyPath                string   `yaml:"keyPath"`
	EnableHostVerification bool     `yaml:"enableHostVerification"`
}

// DecodeFile reads path as strict YAML into v, rejecting unknown fields,
// then validates v's struct tags.
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}
	return Decode(data, v)
}

// Decode parses data as strict YAML into v and validates it.
func Decode(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unable to parse config: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
