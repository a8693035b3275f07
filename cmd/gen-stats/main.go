// Command gen-stats generates sample classifier stats files for testing
// the evaluation pipeline without real classifier output.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var classes = []string{"bird", "possum", "rat", "hedgehog", "none"}

type trackJSON struct {
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
}

type clipJSON struct {
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	Camera      string      `json:"camera"`
	OriginalTag string      `json:"original_tag"`
	Tracks      []trackJSON `json:"tracks"`
}

// The export format has no timezone, so timestamps render zone-less.
const exportLayout = "2006-01-02T15:04:05"

func main() {
	output := flag.String("o", "sample-stats", "output folder")
	clips := flag.Int("n", 50, "number of clips")
	cameras := flag.Int("cameras", 3, "number of cameras")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*output, 0755); err != nil {
		log.Fatalf("failed to create output folder: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	start := time.Date(2017, 12, 20, 21, 0, 0, 0, time.UTC)

	for i := 0; i < *clips; i++ {
		camera := fmt.Sprintf("akaroa%02d", rng.Intn(*cameras)+1)
		tag := classes[rng.Intn(len(classes))]

		// Mostly short gaps with the occasional long one, so clustering
		// produces a mix of multi-clip and single-clip visits.
		start = start.Add(time.Duration(30+rng.Intn(60)) * time.Second)
		if rng.Float64() < 0.2 {
			start = start.Add(time.Duration(5+rng.Intn(30)) * time.Minute)
		}
		end := start.Add(time.Duration(20+rng.Intn(40)) * time.Second)

		clip := clipJSON{
			StartTime:   start.Format(exportLayout),
			EndTime:     end.Format(exportLayout),
			Camera:      camera,
			OriginalTag: tag,
		}

		for t := 0; t < 1+rng.Intn(3); t++ {
			label := tag
			if rng.Float64() < 0.3 { // misclassification or false positive
				label = classes[rng.Intn(len(classes))]
			}
			clip.Tracks = append(clip.Tracks, trackJSON{
				StartTime:  start.Format(exportLayout),
				EndTime:    start.Add(10 * time.Second).Format(exportLayout),
				Label:      label,
				Confidence: 0.3 + 0.7*rng.Float64(),
				Clarity:    0.3 + 0.7*rng.Float64(),
			})
		}

		data, err := json.MarshalIndent(clip, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal clip: %v", err)
		}

		name := fmt.Sprintf("%s-%s-%s.txt", start.Format("20060102"), start.Format("150405"), camera)
		if err := os.WriteFile(filepath.Join(*output, name), data, 0644); err != nil {
			log.Fatalf("failed to write %s: %v", name, err)
		}

		if (i+1)%10 == 0 {
			log.Printf("%d/%d clips", i+1, *clips)
		}
	}

	log.Printf("✓ Created %d stats files in %s", *clips, *output)
}
