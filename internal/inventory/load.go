package inventory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seed []byte

// Override file names looked up in LoadOptions.Dir.
const (
	EquipmentFile = "equipment.yaml"
	SensitiveFile = "sensitive_items.yaml"
	ActivityFile  = "activity.yaml"
)

// OverrideFiles lists the files Load and Watch care about.
var OverrideFiles = []string{EquipmentFile, SensitiveFile, ActivityFile}

type LoadOptions struct {
	// Dir holds optional override files. Each file present replaces the
	// matching section of the built-in dataset.
	Dir    string
	Logger *zap.Logger
}

// Seed returns the built-in dataset.
func Seed() (Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(seed, &d); err != nil {
		return Dataset{}, fmt.Errorf("parse seed data: %w", err)
	}
	d.normalize()
	return d, nil
}

// Load returns the built-in dataset with any override files applied. The
// override files are read concurrently.
func Load(ctx context.Context, opts LoadOptions) (Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	d, err := Seed()
	if err != nil {
		return Dataset{}, err
	}
	if opts.Dir == "" {
		return d, nil
	}

	var (
		equipment []Equipment
		sensitive []SensitiveItem
		activity  []Activity
		found     [3]bool
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := readOverride(ctx, filepath.Join(opts.Dir, EquipmentFile), &equipment)
		found[0] = ok
		return err
	})
	g.Go(func() error {
		ok, err := readOverride(ctx, filepath.Join(opts.Dir, SensitiveFile), &sensitive)
		found[1] = ok
		return err
	})
	g.Go(func() error {
		ok, err := readOverride(ctx, filepath.Join(opts.Dir, ActivityFile), &activity)
		found[2] = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}

	if found[0] {
		d.Equipment = equipment
	}
	if found[1] {
		d.SensitiveItems = sensitive
	}
	if found[2] {
		d.Activity = activity
	}
	d.normalize()
	logger.Info("inventory loaded",
		zap.String("dir", opts.Dir),
		zap.Int("equipment", len(d.Equipment)),
		zap.Int("sensitive_items", len(d.SensitiveItems)),
		zap.Int("activity", len(d.Activity)))
	return d, nil
}

// readOverride decodes path into out. A missing file is not an error.
func readOverride(ctx context.Context, path string, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// normalize fills missing activity ids.
func (d *Dataset) normalize() {
	for i := range d.Activity {
		if d.Activity[i].ID == "" {
			d.Activity[i].ID = uuid.NewString()
		}
	}
}

// NewActivity builds a log entry with a fresh id.
func NewActivity(at time.Time, actor, action, subject, details string) Activity {
	return Activity{
		ID:        uuid.NewString(),
		Timestamp: at,
		Actor:     actor,
		Action:    action,
		Subject:   subject,
		Details:   details,
	}
}
