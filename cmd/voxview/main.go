// Command-line interface to a local voxview server.
// Provides the essential commands: ingest volumes into a store, serve the viewer.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/server"
	"github.com/janelia-flyem/voxview/voxview"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Address for http communication.  Overrides the TOML setting.
	httpAddress = flag.String("http", "", "")

	// Cubic chunk side length used by the ingest command.
	chunkSize = flag.Int("chunksize", pyramid.DefaultChunkSize, "")

	// Cap on pyramid levels built by the ingest command.  0 = no cap.
	maxLevels = flag.Int("maxlevels", 0, "")
)

const version = "0.1.0"

const helpMessage = `
voxview is a progressive multiscale slice viewer for 3d volumes

Usage: voxview [options] <command>

      -http       =string   Address for HTTP communication (overrides TOML setting).
      -chunksize  =number   Chunk side length in voxels used by ingest.
      -maxlevels  =number   Cap on pyramid levels built by ingest.  0 = until one chunk.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	serve  <config.toml>
	ingest <config.toml> <group> <raw uint16 file> <shape, e.g. 100,100,100>

The raw volume file is little-endian uint16 voxels in row-major order with
the first shape dimension varying slowest.
`

var usage = func() {
	fmt.Printf(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if *runVerbose {
		voxview.Verbose = true
		voxview.SetLogMode(voxview.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()
	switch strings.ToLower(args[0]) {
	case "help":
		flag.Usage()
	case "about":
		fmt.Printf("voxview %s (chunk store format %s)\n", version, pyramid.StoreSemVer())
	case "serve":
		if len(args) != 2 {
			log.Fatalf("serve command requires a TOML config file argument\n")
		}
		if err := doServe(args[1]); err != nil {
			log.Fatalf("Error serving voxview: %v\n", err)
		}
	case "ingest":
		if len(args) != 5 {
			log.Fatalf("ingest command requires: <config.toml> <group> <raw file> <shape>\n")
		}
		if err := doIngest(args[1], args[2], args[3], args[4]); err != nil {
			log.Fatalf("Error ingesting volume: %v\n", err)
		}
	default:
		log.Fatalf("Unknown command %q.  Use 'voxview help' for commands.\n", args[0])
	}
}

func doServe(configFile string) error {
	if err := server.LoadConfig(configFile); err != nil {
		return err
	}
	defer voxview.Shutdown()
	service, err := server.OpenService()
	if err != nil {
		return err
	}
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	address := server.HTTPAddress()
	if *httpAddress != "" {
		address = *httpAddress
	}
	return service.Serve(ctx, address)
}

func doIngest(configFile, group, rawFile, shapeStr string) error {
	if err := server.LoadConfig(configFile); err != nil {
		return err
	}
	defer voxview.Shutdown()
	shape, err := parseShape(shapeStr)
	if err != nil {
		return err
	}
	store, err := pyramid.OpenBadger(server.StorePath())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := pyramid.IngestOptions{
		ChunkSize: int32(*chunkSize),
		MaxLevels: *maxLevels,
	}
	meta, err := pyramid.IngestRawFile(store, group, rawFile, shape, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested volume group %q with %d levels.\n", group, len(meta.Levels))
	return nil
}

func parseShape(s string) (shape voxview.Shape3d, err error) {
	n, err := fmt.Sscanf(s, "%d,%d,%d", &shape[0], &shape[1], &shape[2])
	if err != nil || n != 3 {
		return shape, fmt.Errorf("shape must be given as three comma-separated extents, got %q", s)
	}
	if !shape.Valid() {
		return shape, fmt.Errorf("shape %s has a non-positive extent", shape)
	}
	return shape, nil
}
