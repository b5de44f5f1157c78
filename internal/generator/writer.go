package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dataset file names inside an output directory.
const (
	UsersFile       = "users.json"
	ConnectionsFile = "connections.json"
	TransfersFile   = "transfers.json"
)

// ErrMissingDataset reports a dataset file that does not exist.
var ErrMissingDataset = errors.New("dataset not found")

// WriteDataset serializes the dataset into users.json, connections.json and
// transfers.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{UsersFile, dataset.Users},
		{ConnectionsFile, dataset.Connections},
		{TransfersFile, dataset.Transfers},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// ReadDataset loads the three dataset files from dir. users.json is
// required; the other two are optional.
func ReadDataset(dir string) (Dataset, error) {
	var dataset Dataset
	if err := readJSON(filepath.Join(dir, UsersFile), &dataset.Users); err != nil {
		return Dataset{}, err
	}
	for name, dst := range map[string]any{
		ConnectionsFile: &dataset.Connections,
		TransfersFile:   &dataset.Transfers,
	} {
		err := readJSON(filepath.Join(dir, name), dst)
		if err != nil && !errors.Is(err, ErrMissingDataset) {
			return Dataset{}, err
		}
	}
	return dataset, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingDataset, path)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
