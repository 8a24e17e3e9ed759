// Command gen-flights writes a synthetic detections JSONL file and matching
// ADS-B CSV for exercising the replay pipeline without real sensor data.
//
// It generates two crossing flights: an allowlisted airliner passing well
// clear of the restricted zone, and a fast untagged target cutting through
// it. The companion ADS-B file carries a transponder record only for the
// airliner, so the second target scores as an unknown-transponder intruder.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
)

var (
	framesFlag = flag.Int("frames", 100, "Number of frames to generate")
	fpsFlag    = flag.Float64("fps", 25, "Frame rate used for ADS-B timestamps")
	outFlag    = flag.String("out", "flights.jsonl", "Detections JSONL output path")
	adsbFlag   = flag.String("adsb", "flights_adsb.csv", "ADS-B CSV output path")
)

type detection struct {
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	ClassID    int        `json:"class_id"`
}

type frame struct {
	Frame      int         `json:"frame"`
	Detections []detection `json:"detections"`
}

// airliner drifts left to right across the top of the image; intruder dives
// through the middle. Boxes are 40px wide so the pinhole fallback yields
// stable distances.
func airlinerBox(f int) [4]float64 {
	x := 50 + 4*float64(f)
	y := 80.0
	return [4]float64{x, y, x + 40, y + 24}
}

func intruderBox(f int) [4]float64 {
	x := 600 - 3*float64(f)
	y := 100 + 6*float64(f)
	return [4]float64{x, y, x + 40, y + 20}
}

func centroid(b [4]float64) (float64, float64) {
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

func writeDetections(path string, frames int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := 0; i < frames; i++ {
		rec := frame{
			Frame: i,
			Detections: []detection{
				{BBox: airlinerBox(i), Confidence: 0.92, ClassID: 1},
				{BBox: intruderBox(i), Confidence: 0.85, ClassID: 5},
			},
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeADSB emits one record per frame for the airliner only. Positions use
// the identity mapping of image pixels to metres, matching a replay run
// without a homography file.
func writeADSB(path string, frames int, fps float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "transponder_id", "x", "y", "altitude_ft", "speed_kt"}); err != nil {
		return err
	}
	for i := 0; i < frames; i++ {
		x, y := centroid(airlinerBox(i))
		row := []string{
			strconv.FormatFloat(float64(i)/fps, 'f', 4, 64),
			"AAL123",
			strconv.FormatFloat(x, 'f', 2, 64),
			strconv.FormatFloat(y, 'f', 2, 64),
			"34000",
			"440",
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func main() {
	flag.Parse()

	if *framesFlag <= 0 {
		log.Fatalf("frames must be positive, got %d", *framesFlag)
	}

	if err := writeDetections(*outFlag, *framesFlag); err != nil {
		log.Fatalf("failed to write detections: %v", err)
	}
	if err := writeADSB(*adsbFlag, *framesFlag, *fpsFlag); err != nil {
		log.Fatalf("failed to write ADS-B records: %v", err)
	}
	fmt.Printf("wrote %d frames to %s and ADS-B records to %s\n", *framesFlag, *outFlag, *adsbFlag)
}
