package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/importer"
	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/piwi3910/cargoplan/internal/project"
)

// environment is what every planning command needs before it starts.
type environment struct {
	cfg         *project.Config
	logger      *slog.Logger
	catalog     []model.ContainerSpec
	catalogPath string
}

// loadEnvironment reads the config file, sets up logging on the command's
// stderr and loads the container catalog.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	var cfg *project.Config
	var err error
	if configPath == "" {
		cfg, err = project.LoadDefaultConfig()
	} else {
		cfg, err = project.LoadConfig(configPath)
	}
	if err != nil {
		return nil, WrapCLIError(ExitInvalidInput, "failed to load config", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger := project.SetupLogger(cfg, cmd.ErrOrStderr())

	catPath := cfg.Catalog.Path
	if catPath == "" {
		catPath = project.DefaultCatalogPath()
	}
	catalog, err := project.LoadCatalog(catPath)
	if err != nil {
		return nil, WrapCLIError(ExitInvalidInput, "failed to load container catalog", err)
	}
	VerboseLog("Loaded %d containers from %s", len(catalog), catPath)

	return &environment{cfg: cfg, logger: logger, catalog: catalog, catalogPath: catPath}, nil
}

// container resolves the container for a load. The flag wins over the
// manifest, which wins over the configured default.
func (e *environment) container(flag string, manifest project.Manifest) (model.ContainerSpec, error) {
	if flag != "" {
		manifest.ContainerSpec = nil
		manifest.Container = flag
	}
	c, err := manifest.ResolveContainer(e.catalog, e.cfg.Defaults.Container)
	if err != nil {
		return model.ContainerSpec{}, inputError("cannot resolve container", err)
	}
	return c, nil
}

// cargo is the shipment read from a manifest or a spreadsheet. Sheets carry
// no container, so their manifest only has a name.
type cargo struct {
	manifest project.Manifest
	pieces   []model.CargoPiece
	warnings []string
}

func isSheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt", ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// loadCargo reads pieces from a JSON manifest or a CSV/Excel sheet. Row
// errors in a sheet become warnings as long as at least one piece imports.
func loadCargo(path string) (cargo, error) {
	if !isSheet(path) {
		m, err := project.LoadManifest(path)
		if err != nil {
			return cargo{}, WrapCLIError(ExitInvalidInput, "failed to load manifest", err)
		}
		pieces, warnings := m.Pieces()
		return cargo{manifest: m, pieces: pieces, warnings: warnings}, nil
	}

	res := importer.ImportFile(path)
	if len(res.Pieces) == 0 {
		msg := "no cargo pieces imported"
		if len(res.Errors) > 0 {
			msg = res.Errors[0]
		}
		return cargo{}, WrapCLIError(ExitInvalidInput, fmt.Sprintf("failed to import %s", filepath.Base(path)), fmt.Errorf("%s", msg))
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return cargo{
		manifest: project.Manifest{Name: name},
		pieces:   res.Pieces,
		warnings: append(res.Warnings, res.Errors...),
	}, nil
}

// optimizer builds the configured optimizer, applying an algorithm override
// from the flag or, failing that, the manifest.
func (e *environment) optimizer(flag string, manifest project.Manifest) (*engine.Optimizer, error) {
	opt := e.cfg.Optimizer()
	alg := model.Algorithm(strings.ToLower(flag))
	if alg == "" {
		alg = manifest.Algorithm
	}
	switch alg {
	case "":
	case model.AlgorithmGreedy, model.AlgorithmGenetic:
		opt.Settings.Algorithm = alg
	default:
		return nil, NewCLIError(ExitInvalidInput, fmt.Sprintf("unknown algorithm %q: valid values are greedy, genetic", alg))
	}
	return opt, nil
}
