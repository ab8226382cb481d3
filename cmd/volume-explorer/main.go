package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"opticalct/pkg/imageio"
	"opticalct/pkg/logging"
	"opticalct/pkg/visualization"
	"opticalct/pkg/visualization/gui"
)

func main() {
	cmap := flag.String("cmap", "", "Colormap: "+fmt.Sprint(visualization.ColormapNames()))
	clim := flag.String("clim", "", "Display limits as min,max (default: volume range)")
	region := flag.String("region", "", "Explore only rows,cols,depth,nrows,ncols,ndepth")
	snapshot := flag.String("snapshot", "", "Write a PNG of the three views instead of opening a window")
	export := flag.String("export", "", "Export every section of the three planes to this directory")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <directory>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	dir := flag.Arg(0)

	logger := logging.NewConsole(logging.ParseLevel("", *verbose))

	limits, err := parseLimits(*clim)
	if err != nil {
		log.Fatalf("Invalid -clim: %v", err)
	}

	vol, err := imageio.LoadVolume(dir)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}
	logger.Info().Str("dir", dir).Str("shape", vol.Shape()).Msg("Loaded volume")

	if *region != "" {
		r, err := parseRegion(*region)
		if err != nil {
			log.Fatalf("Invalid -region: %v", err)
		}
		vol, err = visualization.ExtractRegion(vol, r[0], r[1], r[2], r[3], r[4], r[5])
		if err != nil {
			log.Fatalf("Invalid -region: %v", err)
		}
	}

	explorer, err := visualization.NewExplorer(vol, *cmap, limits)
	if err != nil {
		log.Fatalf("Failed to open explorer: %v", err)
	}

	headless := false
	if *export != "" {
		headless = true
		if err := explorer.Export(*export); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		logger.Info().Str("dir", *export).Msg("Exported planes")
	}
	if *snapshot != "" {
		headless = true
		if err := explorer.SaveSnapshot(*snapshot, visualization.SnapshotWidth, visualization.SnapshotHeight); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		logger.Info().Str("path", *snapshot).Msg("Saved snapshot")
	}
	if headless {
		return
	}

	w := gui.New(explorer, "Volume Explorer", logger)
	w.Bind()
	w.Run()
}
