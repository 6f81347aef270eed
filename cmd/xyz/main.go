// Command xyz builds a lookup table from sensor metadata and projects the
// frames of a capture file into point clouds.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/banshee-data/xyzlut/internal/config"
	"github.com/banshee-data/xyzlut/internal/lidar/export"
	"github.com/banshee-data/xyzlut/internal/lidar/l1packets/parse"
	"github.com/banshee-data/xyzlut/internal/lidar/l2frames"
	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/lidar/pipeline"
	"github.com/banshee-data/xyzlut/internal/lidar/sensordb"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/version"
)

var (
	metaFile    = flag.String("meta", "", "Sensor metadata JSON file (default: embedded sample sensor)")
	dbFile      = flag.String("db", "", "Path to the sensor metadata SQLite database")
	sensorSN    = flag.String("sensor", "", "Serial number of the sensor to load from -db")
	importMeta  = flag.Bool("import", false, "Store the -meta file in -db and exit")
	listSensors = flag.Bool("list", false, "List sensors stored in -db and exit")
	pcapFile    = flag.String("pcap", "", "Capture file to replay (pcap or pcapng)")
	outDir      = flag.String("out", "", "Directory for exported clouds (overrides config)")
	format      = flag.String("format", "", "Export format: asc or pcd (overrides config)")
	configFile  = flag.String("config", "", "Projection config JSON file")
	workers     = flag.Int("workers", -1, "Projection workers, 0 for GOMAXPROCS (overrides config)")
	udpPort     = flag.Int("udp-port", -1, "UDP destination port to replay, 0 for any (overrides config)")
	maxFrames   = flag.Int("max-frames", -1, "Stop after this many frames, 0 for all (overrides config)")
	destagger   = flag.Bool("destagger", false, "Align exported columns to azimuth using the sensor pixel shifts (overrides config)")
	outUnits    = flag.String("units", "", "Output distance unit: mm, cm, m, in or ft (overrides config)")
	debug       = flag.Bool("debug", false, "Log packet and frame assembly diagnostics to stderr")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("xyz"))
		return
	}

	if *debug {
		parse.SetLogWriters(os.Stderr, os.Stderr, io.Discard)
		l2frames.SetDebugLogger(os.Stderr)
	} else {
		parse.SetLogWriters(os.Stderr, nil, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("xyz: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if *importMeta || *listSensors {
		return manageStore()
	}

	info, err := loadSensor()
	if err != nil {
		return err
	}

	lut, err := xyzlut.New(info.Geometry(), xyzlut.WithRangeUnit(cfg.GetRangeUnit()))
	if err != nil {
		return fmt.Errorf("sensor %s: %w", info.ProdSN, err)
	}
	log.Printf("Sensor %s (%s, %s): %d beams x %d columns", info.ProdSN, info.ProdLine, info.LidarMode, lut.Rows(), lut.Columns())

	if *pcapFile == "" {
		log.Printf("No -pcap given; lookup table built, nothing to project")
		return nil
	}

	outFormat, err := export.ParseFormat(cfg.GetOutputFormat())
	if err != nil {
		return err
	}
	dir := cfg.GetOutputDir()

	var shifts []int
	if cfg.GetDestagger() {
		shifts = info.Format.PixelShiftByRow
		if len(shifts) != lut.Rows() {
			return fmt.Errorf("sensor %s: destagger needs %d pixel shifts, metadata has %d", info.ProdSN, lut.Rows(), len(shifts))
		}
	}

	pool := pipeline.NewPool(lut, cfg.GetWorkers())
	opts := pipeline.ReplayOptions{
		UDPPort:     cfg.GetUDPPort(),
		MaxFrames:   cfg.GetMaxFrames(),
		LogInterval: cfg.GetLogInterval(),
	}

	start := time.Now()
	summary, err := pool.ReplayFile(ctx, *pcapFile, info, opts, func(r pipeline.Result) error {
		cloud := r.Cloud
		if cloud.Count() == 0 {
			return nil
		}
		if shifts != nil {
			var err error
			if cloud, err = export.Destagger(cloud, shifts); err != nil {
				return err
			}
		}
		_, err := export.SaveCloud(dir, fmt.Sprintf("frame-%06d", r.Index), outFormat, cloud)
		return err
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", *pcapFile, err)
	}

	log.Printf("Replayed %s in %v: %d packets (%d rejected), %d scans (%d incomplete), %d frames, %d points -> %s",
		filepath.Base(*pcapFile), time.Since(start).Round(time.Millisecond),
		summary.Capture.Matched, summary.PacketsRejected,
		summary.Batcher.Scans, summary.Batcher.IncompleteScans,
		summary.Pool.Frames, summary.Pool.Points, dir)
	return nil
}

// loadConfig reads -config (or starts empty) and applies explicit flags.
func loadConfig() (*config.ProjectionConfig, error) {
	cfg := config.EmptyProjectionConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadProjectionConfig(*configFile); err != nil {
			return nil, err
		}
	}

	flags := config.EmptyProjectionConfig()
	if *workers >= 0 {
		flags.Workers = workers
	}
	if *udpPort >= 0 {
		flags.UDPPort = udpPort
	}
	if *maxFrames >= 0 {
		flags.MaxFrames = maxFrames
	}
	if *format != "" {
		flags.OutputFormat = format
	}
	if *outDir != "" {
		flags.OutputDir = outDir
	}
	if *outUnits != "" {
		flags.Units = outUnits
	}
	if *destagger {
		flags.Destagger = destagger
	}
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	cfg.Override(flags)
	return cfg, nil
}

// loadSensor resolves metadata from -db/-sensor, -meta or the embedded sample.
func loadSensor() (*metadata.SensorInfo, error) {
	switch {
	case *sensorSN != "":
		if *dbFile == "" {
			return nil, fmt.Errorf("-sensor requires -db")
		}
		store, err := sensordb.Open(*dbFile)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.GetBySerial(*sensorSN)
	case *metaFile != "":
		return metadata.Load(*metaFile)
	default:
		log.Printf("Using embedded sensor metadata %s", metadata.DefaultSensorFile)
		return metadata.Default()
	}
}

func manageStore() error {
	if *dbFile == "" {
		return fmt.Errorf("-import and -list require -db")
	}
	store, err := sensordb.Open(*dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	if *importMeta {
		if *metaFile == "" {
			return fmt.Errorf("-import requires -meta")
		}
		info, err := metadata.Load(*metaFile)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(*metaFile)
		if err != nil {
			return err
		}
		id, err := store.Put(info, raw)
		if err != nil {
			return err
		}
		log.Printf("Stored sensor %s as %s", info.ProdSN, id)
	}

	if *listSensors {
		records, err := store.List()
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\t%s\t%s\t%dx%d\n", r.ID, r.Serial, r.ProdLine, r.LidarMode, r.Rows, r.Columns)
		}
	}
	return nil
}
