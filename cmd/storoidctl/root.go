package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wikimedia/storoid"
	"github.com/wikimedia/storoid/internal/config"
	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/log"
)

// clusterFlags binds the connection flags shared by every subcommand,
// mirroring the teacher's cmd/root.go flag-wiring style.
type clusterFlags struct {
	configFile string
	hosts      []string
	keyspace   string
	logFormat  string
	logLevel   string
}

func (f *clusterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "path to a cluster YAML config file")
	fs.StringSliceVar(&f.hosts, "hosts", nil, "cluster contact hosts (overrides --config)")
	fs.StringVar(&f.keyspace, "reverse-domain", "", "reverse-DNS domain namespacing the table's keyspace")
	fs.StringVar(&f.logFormat, "log-format", "standard", `log output format ("standard" or "json")`)
	fs.StringVar(&f.logLevel, "log-level", log.Info, "log severity threshold")
}

// logger builds the Logger every subcommand uses for operational
// diagnostics, writing info/debug to stdout and warn/error to stderr.
func (f *clusterFlags) logger() (log.Logger, error) {
	return log.NewLogger(f.logFormat, f.logLevel, os.Stdout, os.Stderr)
}

func (f *clusterFlags) connect(ctx context.Context) (*storoid.Store, error) {
	logger, err := f.logger()
	if err != nil {
		return nil, err
	}

	var cc config.ClusterConfig
	if f.configFile != "" {
		if err := config.DecodeFile(f.configFile, &cc); err != nil {
			return nil, err
		}
	}
	if len(f.hosts) > 0 {
		cc.Hosts = f.hosts
	}
	if len(cc.Hosts) == 0 {
		return nil, fmt.Errorf("no cluster hosts given (set --hosts or --config)")
	}

	logger.InfoContext(ctx, "connecting to cluster", "hosts", cc.Hosts)
	session, err := driver.NewSession(driver.Config{
		Hosts:                  cc.Hosts,
		Username:               cc.Username,
		Password:               cc.Password,
		ProtoVersion:           cc.ProtoVersion,
		CAPath:                 cc.CAPath,
		CertPath:               cc.CertPath,
		KeyPath:                cc.KeyPath,
		EnableHostVerification: cc.EnableHostVerification,
	})
	if err != nil {
		logger.ErrorContext(ctx, "unable to connect to cluster", "error", err)
		return nil, fmt.Errorf("unable to connect: %w", err)
	}
	return storoid.New(&driver.GocqlDriver{Session: session}), nil
}

func newRootCommand() *cobra.Command {
	flags := &clusterFlags{}

	root := &cobra.Command{
		Use:   "storoidctl",
		Short: "Operate a storoid-backed document store from the command line",
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newCreateTableCommand(flags),
		newDropTableCommand(flags),
		newGetCommand(flags),
		newPutCommand(flags),
		newDeleteCommand(flags),
	)
	return root
}

func newCreateTableCommand(flags *clusterFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create-table <table>",
		Short: "Create the keyspace, column families, and schema document for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var req storoid.SchemaRequest
			if err := config.DecodeFile(file, &req); err != nil {
				return err
			}
			store, err := flags.connect(c.Context())
			if err != nil {
				return err
			}
			return store.CreateTable(c.Context(), flags.keyspace, args[0], req)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML schema request body")
	return cmd
}

func newDropTableCommand(flags *clusterFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-table <table>",
		Short: "Drop a table's keyspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			store, err := flags.connect(c.Context())
			if err != nil {
				return err
			}
			return store.DropTable(c.Context(), flags.keyspace, args[0])
		},
	}
}

func newGetCommand(flags *clusterFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read rows matching a request body",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var req storoid.ReadRequest
			if err := config.DecodeFile(file, &req); err != nil {
				return err
			}
			store, err := flags.connect(c.Context())
			if err != nil {
				return err
			}
			result, err := store.Get(c.Context(), flags.keyspace, req.Table, req)
			if err != nil {
				return err
			}
			return printJSON(c, result)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML read request body")
	return cmd
}

func newPutCommand(flags *clusterFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Write a row described by a request body",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var req storoid.WriteRequest
			if err := config.DecodeFile(file, &req); err != nil {
				return err
			}
			store, err := flags.connect(c.Context())
			if err != nil {
				return err
			}
			result, err := store.Put(c.Context(), flags.keyspace, req.Table, req)
			if err != nil {
				return err
			}
			return printJSON(c, result)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML write request body")
	return cmd
}

func newDeleteCommand(flags *clusterFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a row described by a request body",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var req storoid.DeleteRequest
			if err := config.DecodeFile(file, &req); err != nil {
				return err
			}
			store, err := flags.connect(c.Context())
			if err != nil {
				return err
			}
			return store.Delete(c.Context(), flags.keyspace, req.Table, req)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML delete request body")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
