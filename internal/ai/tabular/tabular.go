// Package tabular implements a value table: the learned value of each board state, keyed by
// the board hash.
//
// It implements ai.ValueScorer, and it can be saved to and loaded from disk, using encoding/gob.
package tabular

import (
	"encoding/gob"
	"fmt"
	"github.com/janpfeifer/tictactoeGo/internal/ai"
	"github.com/janpfeifer/tictactoeGo/internal/generics"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"slices"
)

// DefaultValue of any state not yet seen.
const DefaultValue = 0.0

// PolicyFilePrefix is prepended to the agent name to form the file name of its saved table.
const PolicyFilePrefix = "policy_"

// ErrPolicyNotFound is returned (wrapped) by Load when the policy file doesn't exist.
var ErrPolicyNotFound = errors.New("policy file not found")

// Table maps board hashes to their learned values.
// It is not safe for concurrent writes, but it can be read concurrently if nobody is writing.
type Table struct {
	values map[string]float64

	// FileName where to save/load the table from. It may be empty, in which case Save does nothing.
	FileName string
}

var (
	// Assert Table is an ai.ValueScorer.
	_ ai.ValueScorer = (*Table)(nil)
)

// New creates an empty table.
func New() *Table {
	return &Table{values: make(map[string]float64)}
}

// NewWithValues creates a table with the given values.
// Ownership of the map is transferred.
func NewWithValues(values map[string]float64) *Table {
	if values == nil {
		values = make(map[string]float64)
	}
	return &Table{values: values}
}

// PolicyFileName returns the path to the policy file of the agent with the given name.
func PolicyFileName(dir, name string) string {
	return filepath.Join(dir, PolicyFilePrefix+name)
}

// GetOrDefault returns the value associated with the hash, or DefaultValue if it has never been set.
// It never inserts the hash.
func (t *Table) GetOrDefault(hash string) float64 {
	if value, found := t.values[hash]; found {
		return value
	}
	return DefaultValue
}

// Get returns the value associated with the hash and whether it was set.
func (t *Table) Get(hash string) (value float64, found bool) {
	value, found = t.values[hash]
	return
}

// Set the value of the given hash.
func (t *Table) Set(hash string, value float64) {
	t.values[hash] = value
}

// Len returns the number of states in the table.
func (t *Table) Len() int {
	return len(t.values)
}

// Hashes returns the hashes in the table, sorted.
func (t *Table) Hashes() []string {
	return slices.Collect(generics.SortedKeys(t.values))
}

// Score implements ai.ValueScorer, by returning the value of the board.
func (t *Table) Score(board *Board) float32 {
	return float32(t.GetOrDefault(board.Hash()))
}

// String implements ai.ValueScorer.
func (t *Table) String() string {
	if t.FileName == "" {
		return fmt.Sprintf("Tabular(%d states)", t.Len())
	}
	return fmt.Sprintf("Tabular(%s, %d states)", t.FileName, t.Len())
}

// Summary of the values in the table.
type Summary struct {
	NumStates    int
	Mean, StdDev float64
	Min, Max     float64
	NumPositive  int
	NumNegative  int
}

// String implements fmt.Stringer.
func (s Summary) String() string {
	return fmt.Sprintf("%d states, mean=%.4f, stddev=%.4f, min=%.4f, max=%.4f, #positive=%d, #negative=%d",
		s.NumStates, s.Mean, s.StdDev, s.Min, s.Max, s.NumPositive, s.NumNegative)
}

// Summary returns statistics about the values learned.
func (t *Table) Summary() (s Summary) {
	s.NumStates = len(t.values)
	if s.NumStates == 0 {
		return
	}
	values := make([]float64, 0, s.NumStates)
	for _, value := range generics.SortedKeysAndValues(t.values) {
		values = append(values, value)
		if len(values) == 1 || value < s.Min {
			s.Min = value
		}
		if len(values) == 1 || value > s.Max {
			s.Max = value
		}
		if value > 0 {
			s.NumPositive++
		} else if value < 0 {
			s.NumNegative++
		}
	}
	if s.NumStates == 1 {
		s.Mean = values[0]
		return
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return
}

func backupName(filename string) string {
	return filename + "~"
}

func temporaryName(filename string) string {
	return filename + ".tmp"
}

// Save table to t.FileName.
//
// The table is first written to a temporary file, which is then renamed to the final name.
// If a previous version of the file exists, it is kept with a "~" suffix.
func (t *Table) Save() error {
	if t.FileName == "" {
		klog.Errorf("Value table not saved, because no file name was specified")
		return nil
	}
	tmpName := temporaryName(t.FileName)
	file, err := os.Create(tmpName)
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file %q to save value table", tmpName)
	}
	enc := gob.NewEncoder(file)
	if err = enc.Encode(t.values); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "failed to encode value table to %q", tmpName)
	}
	if err = file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", tmpName)
	}
	if err = renameToFinal(t.FileName); err != nil {
		return err
	}
	klog.V(1).Infof("Saved value table with %d states to %q", t.Len(), t.FileName)
	return nil
}

func renameToFinal(filename string) error {
	if _, err := os.Stat(filename); err == nil {
		err = os.Rename(filename, backupName(filename))
		if err != nil {
			return errors.Wrapf(err, "failed backing up, while renaming %q to %q", filename, backupName(filename))
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %q", filename)
	}
	err := os.Rename(temporaryName(filename), filename)
	if err != nil {
		return errors.Wrapf(err, "failed renaming temporary file to final name, while renaming %q to %q",
			temporaryName(filename), filename)
	}
	return nil
}

// Load table from fileName. The returned table has its FileName set, so it can be saved back.
//
// If the file doesn't exist it returns an error wrapping ErrPolicyNotFound.
func Load(fileName string) (*Table, error) {
	file, err := os.Open(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrPolicyNotFound, "cannot load value table from %q", fileName)
		}
		return nil, errors.Wrapf(err, "failed to open value table file %q", fileName)
	}
	defer func() { _ = file.Close() }()
	values := make(map[string]float64)
	dec := gob.NewDecoder(file)
	if err = dec.Decode(&values); err != nil {
		return nil, errors.Wrapf(err, "failed to decode value table from %q", fileName)
	}
	t := NewWithValues(values)
	t.FileName = fileName
	klog.V(1).Infof("Loaded value table with %d states from %q", t.Len(), fileName)
	return t, nil
}

// LoadOrCreate loads the table from fileName, or creates an empty one if the file doesn't exist.
// Either way the returned table has its FileName set.
func LoadOrCreate(fileName string) (*Table, error) {
	t, err := Load(fileName)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrPolicyNotFound) {
		return nil, err
	}
	klog.V(1).Infof("No value table in %q, starting a new one", fileName)
	t = New()
	t.FileName = fileName
	return t, nil
}
