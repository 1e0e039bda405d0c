package driver

import "time"

// Config describes how to reach the underlying Cassandra-compatible
// cluster. Shaped after the teacher's cassandra source config (hosts,
// auth, TLS paths, protocol version, host verification).
type Config struct {
	Hosts                  []string      `yaml:"hosts" validate:"required"`
	Username               string        `yaml:"username"`
	Password               string        `yaml:"password"`
	ProtoVersion           int           `yaml:"protoVersion"`
	CAPath                 string        `yaml:"caPath"`
	CertPath               string        `yaml:"certPath"`
	KeyPath                string        `yaml:"keyPath"`
	EnableHostVerification bool          `yaml:"enableHostVerification"`
	Timeout                time.Duration `yaml:"timeout"`
	NumConns               int           `yaml:"numConns"`
}
