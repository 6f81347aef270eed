// Command gen-capture writes a synthetic capture of the embedded sample
// sensor (or a -meta file) for exercising the xyz tool without hardware.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/lidar/synth"
)

var (
	outFile  = flag.String("out", "synthetic.pcap", "Output capture path")
	metaFile = flag.String("meta", "", "Sensor metadata JSON file (default: embedded sample sensor)")
	frames   = flag.Int("frames", 10, "Number of frames to write")
	udpPort  = flag.Int("udp-port", 7502, "UDP destination port")
)

func main() {
	flag.Parse()

	info, err := loadSensor(*metaFile)
	if err != nil {
		log.Fatalf("load metadata: %v", err)
	}

	f, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("create %s: %v", *outFile, err)
	}
	if _, err := synth.WriteCapture(f, info, *frames, *udpPort); err != nil {
		f.Close()
		log.Fatalf("write capture: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close %s: %v", *outFile, err)
	}
	log.Printf("Wrote %d frames of sensor %s to %s", *frames, info.ProdSN, *outFile)
}

func loadSensor(path string) (*metadata.SensorInfo, error) {
	if path == "" {
		return metadata.Default()
	}
	return metadata.Load(path)
}
