// Command tile-dump derives maps from the collision and tile-type maps
// for the standard world bounds: load them (or start fresh), splice any
// configured keep-area overrides into the collision map, run the
// boat-fit processor for every configured boat size and save each
// derived collision map, then run the water-body filter and save the
// filtered tile-type map, all in the chosen wire format. The loaded
// source maps themselves are not written back.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/tilegrid/mapdata/internal/boatfit"
	"github.com/tilegrid/mapdata/internal/codec"
	"github.com/tilegrid/mapdata/internal/collision"
	"github.com/tilegrid/mapdata/internal/config"
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/keeparea"
	"github.com/tilegrid/mapdata/internal/logging"
	"github.com/tilegrid/mapdata/internal/mapdataerr"
	"github.com/tilegrid/mapdata/internal/metrics"
	"github.com/tilegrid/mapdata/internal/sparse"
	"github.com/tilegrid/mapdata/internal/tiletype"
	"github.com/tilegrid/mapdata/internal/waterfilter"
)

func main() {
	var (
		dir            = flag.String("dir", ".", "output directory for persisted maps")
		fresh          = flag.String("fresh", "n", "y to start from an empty map, n to load existing files from -dir")
		formatFlag     = flag.String("format", "roaring", "wire format: roaring | sparse | wordset")
		boatSizesFlag  = flag.String("boat-sizes", "", "comma-separated boat edge lengths to fit-check (default: config)")
		waterThreshold = flag.Int("water-threshold", 0, "minimum surviving water-body size, 0 means config default")
		gz             = flag.Bool("gz", false, "gzip persisted files on save")
		metricsAddr    = flag.String("metrics-addr", "", "if set, serve /metrics on this address for the run's duration")
		configPath     = flag.String("config", "", "path to a YAML config file (default: TILE_CONFIG env, then built-in defaults)")
		keepAreaPath   = flag.String("keep-area", "", "optional YAML file listing keep-area rectangles to splice in")
	)
	flag.Parse()

	logger := logging.Default(*dir).MustGet("tile-dump")
	defer logging.Default(*dir).CloseAll()

	if err := run(logger, *dir, *fresh == "y", *formatFlag, *boatSizesFlag, *waterThreshold, *gz, *metricsAddr, *configPath, *keepAreaPath); err != nil {
		fmt.Fprintf(os.Stderr, "tile-dump: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *logging.Logger, dir string, fresh bool, formatName, boatSizesFlag string, waterThreshold int, gz bool, metricsAddr, configPath, keepAreaPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	format, err := parseFormat(formatName)
	if err != nil {
		return err
	}

	reg := metrics.New()
	if metricsAddr != "" {
		srv := startMetricsServer(metricsAddr, reg, logger)
		defer srv.Close()
	}

	collisionIndexer, err := buildIndexer(cfg, 2)
	if err != nil {
		return fmt.Errorf("build collision indexer: %w", err)
	}
	tileTypeIndexer, err := buildIndexer(cfg, 1)
	if err != nil {
		return fmt.Errorf("build tile-type indexer: %w", err)
	}

	source, err := loadOrCreateCollision(fresh, mapPath(dir, "collision", format, gz), format, collisionIndexer, reg, logger)
	if err != nil {
		return fmt.Errorf("load collision map: %w", err)
	}
	tiles, err := loadOrCreateTileType(fresh, mapPath(dir, "tiletype", format, gz), format, tileTypeIndexer, reg, logger)
	if err != nil {
		return fmt.Errorf("load tile-type map: %w", err)
	}

	if keepAreaPath != "" {
		if err := applyKeepArea(keepAreaPath, source, collisionIndexer, format, reg, logger); err != nil {
			return fmt.Errorf("apply keep-area overrides: %w", err)
		}
	}

	boatSizes := parseBoatSizes(boatSizesFlag, cfg.BoatFit.Sizes)
	cBounds := collisionBounds(collisionIndexer)

	for _, n := range boatSizes {
		container, err := newCollisionContainer(format)
		if err != nil {
			return err
		}
		out := collision.New(container, collisionIndexer, collision.SemanticsPathable)

		bar := progressbar.Default(int64(cBounds.MaxX-cBounds.MinX)+1, fmt.Sprintf("boat-fit n=%d", n))
		err = boatfit.Run(context.Background(), boatfit.Options{
			Source:  source,
			Tiles:   tiles,
			Out:     out,
			Indexer: collisionIndexer,
			BoatN:   n,
			Bounds:  cBounds,
			Metrics: reg,
			Progress: func(done, total int) {
				_ = bar.Set(done)
			},
		})
		if err != nil {
			return fmt.Errorf("boat-fit n=%d: %w", n, err)
		}

		outPath := mapPath(dir, fmt.Sprintf("boat_%d", n), format, gz)
		boatWriter := codec.NewWriter(format, out.Data().Container())
		boatWriter.Metrics = reg
		if err := boatWriter.Save(outPath); err != nil {
			return fmt.Errorf("save boat-fit n=%d: %w", n, err)
		}
		logger.Info("wrote %s", outPath)
	}

	threshold := waterThreshold
	if threshold <= 0 {
		threshold = cfg.WaterFilter.GetMinBodySize()
	}

	filteredContainer, err := newTileTypeContainer(format)
	if err != nil {
		return err
	}
	filtered := tiletype.New(filteredContainer, tileTypeIndexer)

	tBounds := tileTypeBounds(tileTypeIndexer)
	bar := progressbar.Default(int64(len(tBounds.Planes)), "water-filter")
	err = waterfilter.Run(context.Background(), waterfilter.Options{
		Source:    tiles,
		Out:       filtered,
		Bounds:    tBounds,
		Threshold: threshold,
		Metrics:   reg,
		Progress: func(done, total int) {
			_ = bar.Set(done)
		},
	})
	if err != nil {
		return fmt.Errorf("water-filter: %w", err)
	}

	filteredPath := mapPath(dir, "tiletype.filtered", format, gz)
	filteredWriter := codec.NewWriter(format, filtered.Container())
	filteredWriter.Metrics = reg
	if err := filteredWriter.Save(filteredPath); err != nil {
		return fmt.Errorf("save water-filter output: %w", err)
	}
	logger.Info("wrote %s", filteredPath)

	return nil
}

func parseFormat(name string) (codec.Format, error) {
	switch strings.ToLower(name) {
	case "roaring", "":
		return codec.FormatRoaring, nil
	case "sparse":
		return codec.FormatBitSet, nil
	case "wordset":
		return codec.FormatWordArray, nil
	default:
		return 0, fmt.Errorf("%w: unknown -format %q", mapdataerr.ErrInvalidConfiguration, name)
	}
}

func mapPath(dir, name string, format codec.Format, gz bool) string {
	filename := fmt.Sprintf("%s.%s.bin", name, format.String())
	if gz {
		filename += ".gz"
	}
	return filepath.Join(dir, filename)
}

func newCollisionContainer(format codec.Format) (sparse.Container, error) {
	switch format {
	case codec.FormatRoaring:
		return sparse.NewRoaring(), nil
	case codec.FormatBitSet:
		return sparse.NewBitSet(), nil
	case codec.FormatWordArray:
		return sparse.NewWordArray(1)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", mapdataerr.ErrInvalidConfiguration, format)
	}
}

func newTileTypeContainer(format codec.Format) (sparse.Container, error) {
	switch format {
	case codec.FormatRoaring:
		return sparse.NewRoaring(), nil
	case codec.FormatBitSet:
		return sparse.NewBitSet(), nil
	case codec.FormatWordArray:
		return sparse.NewWordArray(8)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", mapdataerr.ErrInvalidConfiguration, format)
	}
}

func buildIndexer(cfg *config.Config, addressesPerCoord int) (*coord.Indexer, error) {
	return coord.NewIndexerBuilder().
		Scheme(coord.SchemeContiguous).
		XBits(cfg.Indexer.XBits).XBase(int32(cfg.Indexer.XBase)).
		YBits(cfg.Indexer.YBits).YBase(int32(cfg.Indexer.YBase)).
		PlaneBits(cfg.Indexer.PlaneBits).PlaneBase(int32(cfg.Indexer.PlaneBase)).
		Addresses(addressesPerCoord).
		CapacityBits(32).
		Build()
}

func loadOrCreateCollision(fresh bool, path string, format codec.Format, indexer *coord.Indexer, reg *metrics.Registry, logger *logging.Logger) (*collision.Map, error) {
	if !fresh && fileExists(path) {
		container, loadedFormat, err := codec.Load(path, reg)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded %s (%s)", path, loadedFormat)
		return collision.New(container, indexer, collision.SemanticsBlocking), nil
	}
	if !fresh {
		logger.Warn("%s not found, starting from an empty collision map", path)
	}

	container, err := newCollisionContainer(format)
	if err != nil {
		return nil, err
	}
	return collision.New(container, indexer, collision.SemanticsBlocking), nil
}

func loadOrCreateTileType(fresh bool, path string, format codec.Format, indexer *coord.Indexer, reg *metrics.Registry, logger *logging.Logger) (*tiletype.Map, error) {
	if !fresh && fileExists(path) {
		container, loadedFormat, err := codec.Load(path, reg)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded %s (%s)", path, loadedFormat)
		return tiletype.New(container, indexer), nil
	}
	if !fresh {
		logger.Warn("%s not found, starting from an empty tile-type map", path)
	}

	container, err := newTileTypeContainer(format)
	if err != nil {
		return nil, err
	}
	return tiletype.New(container, indexer), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseBoatSizes(flagValue string, configured []int) []int {
	if flagValue == "" {
		if len(configured) > 0 {
			return configured
		}
		return []int{1, 2, 3}
	}

	var sizes []int
	for _, part := range strings.Split(flagValue, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			continue
		}
		sizes = append(sizes, n)
	}
	return sizes
}

func collisionBounds(indexer *coord.Indexer) boatfit.Bounds {
	xMin, xMax, yMin, yMax, planeMin, planeMax := indexer.Bounds()
	return boatfit.Bounds{
		MinX: xMin, MaxX: xMax,
		MinY: yMin, MaxY: yMax,
		Planes: planeRange(planeMin, planeMax),
	}
}

func tileTypeBounds(indexer *coord.Indexer) waterfilter.Bounds {
	xMin, xMax, yMin, yMax, planeMin, planeMax := indexer.Bounds()
	return waterfilter.Bounds{
		MinX: xMin, MaxX: xMax,
		MinY: yMin, MaxY: yMax,
		Planes: planeRange(planeMin, planeMax),
	}
}

func planeRange(min, max int32) []int32 {
	planes := make([]int32, 0, max-min+1)
	for p := min; p <= max; p++ {
		planes = append(planes, p)
	}
	return planes
}

type keepAreaFile struct {
	BaselineFile string `yaml:"baseline_file"`
	Rects        []struct {
		MinX  int32 `yaml:"min_x"`
		MinY  int32 `yaml:"min_y"`
		MaxX  int32 `yaml:"max_x"`
		MaxY  int32 `yaml:"max_y"`
		Plane int32 `yaml:"plane"`
	} `yaml:"rects"`
}

// applyKeepArea loads the YAML rectangle list at path, opens its
// baseline collision file, and splices the baseline's N/E bits into
// target for every tile each rectangle covers (spec §4.9).
func applyKeepArea(path string, target *collision.Map, indexer *coord.Indexer, format codec.Format, reg *metrics.Registry, logger *logging.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var kf keepAreaFile
	if err := yaml.Unmarshal(raw, &kf); err != nil {
		return fmt.Errorf("%w: parse keep-area file: %v", mapdataerr.ErrInvalidConfiguration, err)
	}
	if kf.BaselineFile == "" || len(kf.Rects) == 0 {
		return nil
	}

	baselineContainer, _, err := codec.Load(kf.BaselineFile, reg)
	if err != nil {
		return fmt.Errorf("load keep-area baseline %s: %w", kf.BaselineFile, err)
	}
	baseline := collision.New(baselineContainer, indexer, collision.SemanticsBlocking)

	rects := make([]keeparea.Rect, 0, len(kf.Rects))
	for _, r := range kf.Rects {
		rects = append(rects, keeparea.Rect{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY, Plane: r.Plane})
	}

	overlay, err := keeparea.New(baseline, rects)
	if err != nil {
		return err
	}

	applied := 0
	for _, r := range rects {
		for x := r.MinX; x <= r.MaxX; x++ {
			for y := r.MinY; y <= r.MaxY; y++ {
				ok, err := overlay.OverrideTileCollisionIfApplicable(target, x, y, r.Plane)
				if err != nil {
					return err
				}
				if ok {
					applied++
				}
			}
		}
	}
	logger.Info("keep-area: spliced %d tiles from %d rectangle(s)", applied, len(rects))
	return nil
}

func startMetricsServer(addr string, reg *metrics.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Info("serving metrics on http://%s/metrics for the duration of this run", addr)

	// Give the listener a moment to bind before the batch work starts,
	// so an early scrape doesn't race a connection-refused error.
	time.Sleep(50 * time.Millisecond)
	return srv
}
