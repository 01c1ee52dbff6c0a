package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ReadingsFile    = "readings.json"
	ComparisonsFile = "comparisons.json"
)

// WriteDataset stores the dataset as ReadingsFile and ComparisonsFile in dir.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, ReadingsFile), dataset.Readings); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ComparisonsFile), dataset.Comparisons)
}

// ReadDataset loads a dataset written by WriteDataset. A missing
// comparisons file yields no comparisons.
func ReadDataset(dir string) (Dataset, error) {
	var ds Dataset
	if err := readJSON(filepath.Join(dir, ReadingsFile), &ds.Readings); err != nil {
		return Dataset{}, err
	}
	err := readJSON(filepath.Join(dir, ComparisonsFile), &ds.Comparisons)
	if err != nil && !os.IsNotExist(err) {
		return Dataset{}, err
	}
	return ds, nil
}

// writeJSON writes data to a temp file beside path and renames it into place,
// so readers never observe a half-written dataset.
func writeJSON(path string, data any) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
