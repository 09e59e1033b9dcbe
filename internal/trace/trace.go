// Package trace persists recorded animation runs. Each run gets its own
// directory under the store root holding metadata.json and frames.csv,
// so runs stay greppable and loadable without the tool that wrote them.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Frame is one recorded animation frame: what the reducer decided, what
// was drawn, and where the quad corners stood.
type Frame struct {
	Time      float64 // seconds since the run started
	Step      int     // scenario step that produced the frame
	Action    string  // draw, clear or noop
	Smear     int     // smear cells drawn
	Particles int     // particle cells drawn
	Demand    int
	Created   int
	Budget    int
	Corners   [8]float64 // row,col pairs in clockwise order
}

// RunMetadata summarizes a stored run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	Steps     int                `json:"steps"`
	Frames    int                `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

var frameHeader = []string{
	"time", "step", "action", "smear", "particles", "demand", "created", "budget",
	"r0", "c0", "r1", "c1", "r2", "c2", "r3", "c3",
}

// Save writes a run to disk and returns its generated ID. The ID,
// timestamp and frame count in meta are filled in here.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Frames = len(frames)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, fr := range frames {
		row := []string{
			strconv.FormatFloat(fr.Time, 'f', 6, 64),
			strconv.Itoa(fr.Step),
			fr.Action,
			strconv.Itoa(fr.Smear),
			strconv.Itoa(fr.Particles),
			strconv.Itoa(fr.Demand),
			strconv.Itoa(fr.Created),
			strconv.Itoa(fr.Budget),
		}
		for _, v := range fr.Corners {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every readable run, skipping anything
// broken or foreign in the store directory.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads a run's frame log. Unparseable rows are skipped.
func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		fr := Frame{Time: t, Action: rec[2]}
		fr.Step, _ = strconv.Atoi(rec[1])
		fr.Smear, _ = strconv.Atoi(rec[3])
		fr.Particles, _ = strconv.Atoi(rec[4])
		fr.Demand, _ = strconv.Atoi(rec[5])
		fr.Created, _ = strconv.Atoi(rec[6])
		fr.Budget, _ = strconv.Atoi(rec[7])
		for i := 0; i < 8; i++ {
			fr.Corners[i], _ = strconv.ParseFloat(rec[8+i], 64)
		}
		frames = append(frames, fr)
	}
	return frames, nil
}
