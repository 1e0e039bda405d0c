package driver

import (
	"context"
	"fmt"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
)

// GocqlDriver adapts a *gocql.Session to the Driver interface. Session
// construction follows the same cluster-config assembly as the teacher's
// cassandra source: host list, optional TLS material, protocol version,
// and host-verification toggle.
type GocqlDriver struct {
	Session *gocql.Session
}

var _ Driver = (*GocqlDriver)(nil)

// NewSession builds a *gocql.Session from a Config.
func NewSession(cfg Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.ProtoVersion > 0 {
		cluster.ProtoVersion = cfg.ProtoVersion
	}
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	if cfg.NumConns > 0 {
		cluster.NumConns = cfg.NumConns
	}
	if cfg.Username != "" || cfg.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	if cfg.CAPath != "" || cfg.CertPath != "" || cfg.KeyPath != "" {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.CAPath,
			CertPath:               cfg.CertPath,
			KeyPath:                cfg.KeyPath,
			EnableHostVerification: cfg.EnableHostVerification,
		}
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("unable to create cassandra session: %w", err)
	}
	return session, nil
}

// NewTimeUUID generates a fresh time-based UUID for synthesizing an
// implicit clustering column (schema.AttrImplicitTid) at write time.
func NewTimeUUID() any {
	return gocql.TimeUUID()
}

func toGocqlConsistency(c Consistency) gocql.Consistency {
	switch c {
	case All:
		return gocql.All
	case LocalQuorum:
		return gocql.LocalQuorum
	default:
		return gocql.One
	}
}

// Execute implements Driver.
func (d *GocqlDriver) Execute(ctx context.Context, stmt Statement) ([]map[string]any, error) {
	q := d.Session.Query(stmt.Query, stmt.Params...).Consistency(toGocqlConsistency(stmt.Consistency))
	iter := q.IterContext(ctx)

	var rows []map[string]any
	for {
		row := make(map[string]any)
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, row)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("unable to read rows: %w", err)
	}
	return rows, nil
}

// ExecuteCAS implements Driver.
func (d *GocqlDriver) ExecuteCAS(ctx context.Context, stmt Statement) (bool, map[string]any, error) {
	q := d.Session.Query(stmt.Query, stmt.Params...).Consistency(toGocqlConsistency(stmt.Consistency)).WithContext(ctx)
	existing := make(map[string]any)
	applied, err := q.MapScanCAS(existing)
	if err != nil {
		return false, nil, fmt.Errorf("unable to execute conditional statement: %w", err)
	}
	if applied {
		return true, nil, nil
	}
	return false, existing, nil
}

// Batch implements Driver.
func (d *GocqlDriver) Batch(ctx context.Context, stmts []Statement) error {
	if len(stmts) == 0 {
		return nil
	}
	if len(stmts) == 1 {
		_, err := d.Execute(ctx, stmts[0])
		return err
	}
	batch := d.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, s := range stmts {
		batch.Query(s.Query, s.Params...)
	}
	if err := d.Session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("unable to execute batch: %w", err)
	}
	return nil
}
