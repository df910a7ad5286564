package battery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Level is a battery reading. Present is false when no reading is available.
type Level struct {
	Value   float64
	Present bool
}

// Unavailable is the reading used when the host has no battery information.
var Unavailable = Level{}

// Of returns a present reading clamped to [0, 1].
func Of(v float64) Level {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return Level{Value: v, Present: true}
}

// DefaultRoot is where Linux exposes power supplies.
const DefaultRoot = "/sys/class/power_supply"

// Sysfs reads the first battery found under Root.
type Sysfs struct {
	Root string
}

// Level never fails: any read problem is reported as Unavailable.
func (s Sysfs) Level() Level {
	lvl, err := s.Read()
	if err != nil {
		return Unavailable
	}
	return lvl
}

// Read returns the battery level or the reason it could not be read.
func (s Sysfs) Read() (Level, error) {
	root := s.Root
	if root == "" {
		root = DefaultRoot
	}
	supplies, err := filepath.Glob(filepath.Join(root, "*"))
	if err != nil {
		return Unavailable, err
	}
	for _, dir := range supplies {
		kind, err := readTrimmed(filepath.Join(dir, "type"))
		if err != nil || kind != "Battery" {
			continue
		}
		raw, err := readTrimmed(filepath.Join(dir, "capacity"))
		if err != nil {
			return Unavailable, err
		}
		pct, err := strconv.Atoi(raw)
		if err != nil {
			return Unavailable, fmt.Errorf("parse capacity %q: %w", raw, err)
		}
		return Of(float64(pct) / 100), nil
	}
	return Unavailable, fmt.Errorf("no battery under %s", root)
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Static always reports the same reading.
type Static Level

func (s Static) Level() Level { return Level(s) }
