package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ps-vitor/sub2lease-seed/internal/config"
	"github.com/ps-vitor/sub2lease-seed/internal/repositories"
	"github.com/ps-vitor/sub2lease-seed/internal/services"
	"github.com/ps-vitor/sub2lease-seed/pkg/logger"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

type rootOptions struct {
	envFile    string
	configFile string
	uri        string
	database   string
	logLevel   string
	dryRun     bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Load JSON fixtures into the Sub2Lease MongoDB database",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, out, opts)
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "environment file to load before reading variables")
	flags.StringVar(&opts.configFile, "config", "", "YAML file with mongo settings and resources (default $SEED_CONFIG)")
	flags.StringVar(&opts.uri, "uri", "", "MongoDB connection string (default $MONGO_URI)")
	flags.StringVar(&opts.database, "db", "", "database name (default $MONGO_DB)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default $SEED_LOG_LEVEL)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Upsert documents with _id and insert the rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, out, opts)
		},
	}
	run.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and count fixtures against an in-memory store")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and count fixtures against an in-memory store")

	empty := &cobra.Command{
		Use:   "empty <collection>",
		Short: "Delete every document in one configured collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmpty(cmd, out, opts, args[0])
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the document count of every configured collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, out, opts)
		},
	}

	root.AddCommand(run, empty, status)
	return root
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(config.Options{EnvFile: opts.envFile, ConfigFile: opts.configFile})
	if err != nil {
		return nil, err
	}
	if opts.uri != "" {
		cfg.Mongo.URI = opts.uri
	}
	if opts.database != "" {
		cfg.Mongo.Database = opts.database
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSeed(cmd *cobra.Command, out io.Writer, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(out, "seed", cfg.LogLevel)
	ctx := cmd.Context()

	var repo repositories.DocumentWriter
	if opts.dryRun {
		log.Info("dry run: writing to in-memory store")
		repo = repositories.NewMemoryDocumentRepository()
	} else {
		log.Logger.Info().Str("uri", redact(cfg.Mongo.URI)).Str("db", cfg.Mongo.Database).Msg("connecting")
		client, mongoRepo, err := repositories.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Error(err, "connection failed")
			return err
		}
		defer func() {
			if err := client.Disconnect(ctx); err != nil {
				log.Error(err, "disconnect failed")
			}
		}()
		repo = mongoRepo
	}

	services.NewSeederService(repo, log).Run(ctx, cfg.Resources)
	return nil
}

func runEmpty(cmd *cobra.Command, out io.Writer, opts *rootOptions, collection string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(out, "seed", cfg.LogLevel)
	ctx := cmd.Context()

	client, repo, err := repositories.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Error(err, "connection failed")
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	n, err := services.NewEmptyService(repo, cfg.Collections(), log).Empty(ctx, collection)
	if err != nil {
		log.Error(err, "empty failed")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Emptied %q collection. %d documents removed.\n", collection, n)
	return nil
}

func runStatus(cmd *cobra.Command, out io.Writer, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(out, "seed", cfg.LogLevel)
	ctx := cmd.Context()

	client, repo, err := repositories.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Error(err, "connection failed")
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	counts, err := services.NewStatusService(repo, cfg.Collections(), log).Counts(ctx)
	if err != nil {
		log.Error(err, "status failed")
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", c.Collection, c.Documents)
	}
	return nil
}

// redact hides the password of a connection string before it is logged.
// Multi-host seed lists are not valid URLs, so those go through the
// driver's parser and the password is masked in place.
func redact(uri string) string {
	if u, err := url.Parse(uri); err == nil {
		return u.Redacted()
	}

	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "<unparseable uri>"
	}
	if !cs.PasswordSet {
		return uri
	}

	scheme := strings.Index(uri, "://") + len("://")
	rest := uri[scheme:]
	hostsEnd := strings.IndexAny(rest, "/?")
	if hostsEnd < 0 {
		hostsEnd = len(rest)
	}
	at := strings.LastIndex(rest[:hostsEnd], "@")
	colon := strings.Index(rest[:max(at, 0)], ":")
	if at < 0 || colon < 0 {
		return "<unparseable uri>"
	}
	return uri[:scheme] + rest[:colon+1] + "xxxxx" + rest[at:]
}
