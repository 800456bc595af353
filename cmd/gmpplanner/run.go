package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/internal/config"
	"github.com/Afinucci/Design-Copilot-sub000/internal/export"
	"github.com/Afinucci/Design-Copilot-sub000/internal/logging"
	"github.com/Afinucci/Design-Copilot-sub000/internal/notify"
	"github.com/Afinucci/Design-Copilot-sub000/internal/relstore"
	"github.com/Afinucci/Design-Copilot-sub000/internal/server"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/engine"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
)

// app holds what every subcommand shares.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []io.Closer
}

func (a *app) init(cfgFile string) error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "gmpplanner")
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// close releases everything init and the run functions opened, newest
// first. It is safe to call more than once.
func (a *app) close() {
	logger := a.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("closing resource", zap.Error(err))
		}
	}
	a.closers = nil
	logger.Sync()
}

func (a *app) table() (*reference.Table, error) {
	if a.cfg.Reference.File == "" {
		return reference.Default(), nil
	}
	t, err := reference.Load(a.cfg.Reference.File)
	if err != nil {
		return nil, fmt.Errorf("loading reference table: %w", err)
	}
	return t, nil
}

func (a *app) generator(table *reference.Table) textgen.Generator {
	if a.cfg.TextGen.Provider == "http" {
		return textgen.NewHTTPClient(a.cfg.HTTPGenerator(), a.logger.Named("textgen"))
	}
	return textgen.NewRuleBased(table)
}

// service wires the engine from configuration. Resources it opens are
// released when the command finishes.
func (a *app) service(ctx context.Context) (*engine.Service, error) {
	table, err := a.table()
	if err != nil {
		return nil, err
	}

	store, closer, err := relstore.Open(ctx, a.cfg.StoreOptions(), a.logger.Named("relstore"))
	if err != nil {
		return nil, fmt.Errorf("opening relationship store: %w", err)
	}
	a.closers = append(a.closers, closer)

	deps := engine.Deps{
		Table:     table,
		Store:     store,
		Generator: a.generator(table),
		Logger:    a.logger,
	}

	if m := a.cfg.MQTT; m.Enabled {
		pub, err := notify.Connect(notify.Options{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			Topic:    m.Topic,
			QoS:      byte(m.QoS),
		}, a.logger.Named("notify"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub)
		deps.Notifier = pub
	}

	return engine.New(a.cfg.Engine(), deps)
}

type generateOptions struct {
	requestFile string
	rooms       []string
	description string
	batchSize   float64
	throughput  float64
	style       string
	flow        string
	seed        uint64
	seedSet     bool
	xlsx        string
	report      bool
}

// request builds the generation request from a request file, or a project
// directory holding request.yaml. Flags override the file.
func (o generateOptions) request() (*spec.Request, error) {
	req := &spec.Request{}
	if o.requestFile != "" {
		load := spec.Load
		if info, err := os.Stat(o.requestFile); err == nil && info.IsDir() {
			load = spec.LoadProject
		}
		var err error
		if req, err = load(o.requestFile); err != nil {
			return nil, err
		}
	}
	if len(o.rooms) > 0 {
		req.ExplicitRooms = o.rooms
	}
	if o.description != "" {
		req.Description = o.description
	}
	if o.batchSize > 0 || o.throughput > 0 {
		if req.Capacity == nil {
			req.Capacity = &spec.Capacity{}
		}
		if o.batchSize > 0 {
			bs := o.batchSize
			req.Capacity.BatchSize = &bs
		}
		if o.throughput > 0 {
			tp := o.throughput
			req.Capacity.Throughput = &tp
		}
	}
	if o.style != "" {
		st, err := spec.ParseLayoutStyle(o.style)
		if err != nil {
			return nil, err
		}
		req.Constraints.LayoutStyle = st
	}
	if o.flow != "" {
		fp, err := spec.ParseFlowPriority(o.flow)
		if err != nil {
			return nil, err
		}
		req.Constraints.PrioritizeFlow = fp
	}
	return req, nil
}

func (a *app) runGenerate(ctx context.Context, opts generateOptions) error {
	req, err := opts.request()
	if err != nil {
		return err
	}
	if opts.seedSet {
		a.cfg.Layout.Seed = opts.seed
	}

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	l, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	if opts.xlsx != "" {
		if err := export.WriteFile(l, opts.xlsx); err != nil {
			return err
		}
		a.logger.Info("schedule written", zap.String("path", opts.xlsx))
	}

	if opts.report {
		printValidationReport(l.Report)
		printMetadata(l)
		return nil
	}
	return writeJSON(os.Stdout, l)
}

func (a *app) runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading layout file: %w", err)
	}
	var l facility.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("parsing layout: %w", err)
	}

	table, err := a.table()
	if err != nil {
		return err
	}
	// Validation never queries relationships, so no store is opened.
	svc, err := engine.New(a.cfg.Engine(), engine.Deps{
		Table:  table,
		Store:  relstore.NewStaticStore(nil),
		Logger: a.logger,
	})
	if err != nil {
		return err
	}

	report := svc.Validate(&l)
	printValidationReport(report)

	if !report.Valid {
		a.close()
		os.Exit(1)
	}
	return nil
}

func (a *app) runReference(asJSON bool) error {
	table, err := a.table()
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(os.Stdout, table.Records())
	}
	printReferenceTable(os.Stdout, table.Records())
	return nil
}

// ruleDB is the part of the SQL stores the relations subcommands use.
type ruleDB interface {
	Migrate(ctx context.Context) error
	Import(ctx context.Context, rules []relations.Rule, replace bool) (int, error)
	Close() error
}

func (a *app) ruleDB() (ruleDB, error) {
	r := a.cfg.Relations
	switch r.Backend {
	case relstore.BackendSQLite:
		s, err := relstore.OpenSQLite(r.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case relstore.BackendPostgres:
		s, err := relstore.OpenPostgres(r.Postgres.DSN, r.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("relations.backend is %q; migrate and import need sqlite or postgres", r.Backend)
	}
}

func (a *app) runMigrate(ctx context.Context) error {
	db, err := a.ruleDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	a.logger.Info("rule schema ready", zap.String("backend", a.cfg.Relations.Backend))
	return nil
}

func (a *app) runImport(ctx context.Context, path string, replace bool) error {
	rules := relstore.DefaultRules()
	if path != "" {
		var err error
		if rules, err = relstore.LoadRules(path); err != nil {
			return err
		}
	}

	db, err := a.ruleDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	n, err := db.Import(ctx, rules, replace)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d rules into %s\n", n, a.cfg.Relations.Backend)
	return nil
}

func (a *app) runServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	srv := server.New(svc, addr, a.cfg.Server.MaxBodyBytes, a.logger.Named("server"))
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
