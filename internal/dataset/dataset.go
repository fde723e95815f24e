// Package dataset holds the seed configurations and the static reference
// results: accuracy figures measured elsewhere, read-only at runtime.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/parser"
)

//go:embed defaults.yaml
var defaultYAML []byte

//go:embed summary.md
var summaryMarkdown string

// ErrInvalidDataset wraps every load or validation failure.
var ErrInvalidDataset = errors.New("invalid dataset")

// MaxFileSize bounds user-supplied dataset files.
const MaxFileSize = 1 << 20

var validate = validator.New()

// OrderBiasRow is accuracy at one ordering-quality bucket.
type OrderBiasRow struct {
	Label string  `json:"label" yaml:"label" validate:"required"`
	Tau   float64 `json:"tau" yaml:"tau" validate:"gte=-1,lte=1"`
	Top1  float64 `json:"top1" yaml:"top1" validate:"gte=0,lte=100"`
	Top3  float64 `json:"top3" yaml:"top3" validate:"gte=0,lte=100"`
	Top5  float64 `json:"top5" yaml:"top5" validate:"gte=0,lte=100"`
	Top10 float64 `json:"top10" yaml:"top10" validate:"gte=0,lte=100"`
}

// SegmentationRow compares perfect and worst ordering at one segment size.
type SegmentationRow struct {
	SegmentSize int     `json:"segment_size" yaml:"segment_size" validate:"gte=1"`
	PerfectTop1 float64 `json:"perfect_top1" yaml:"perfect_top1" validate:"gte=0,lte=100"`
	WorstTop1   float64 `json:"worst_top1" yaml:"worst_top1" validate:"gte=0,lte=100"`
}

// Gap is the accuracy lost by worst ordering at this segment size.
func (r SegmentationRow) Gap() float64 {
	return r.PerfectTop1 - r.WorstTop1
}

// StrategyRow is the measured accuracy of one ranking technique. Strategy
// links the row to a ranker strategy name when one models it.
type StrategyRow struct {
	Technique string  `json:"technique" yaml:"technique" validate:"required"`
	Top1      float64 `json:"top1" yaml:"top1" validate:"gte=0,lte=100"`
	Category  string  `json:"category" yaml:"category" validate:"required"`
	Strategy  string  `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// LeakageRow compares original and renamed identifiers in one context.
type LeakageRow struct {
	Context  string  `json:"context" yaml:"context" validate:"required"`
	Original float64 `json:"original" yaml:"original" validate:"gte=0,lte=100"`
	Renamed  float64 `json:"renamed" yaml:"renamed" validate:"gte=0,lte=100"`
}

// Dataset is the full reference configuration.
type Dataset struct {
	Playground       []models.Entity   `json:"playground" yaml:"playground" validate:"required,min=1,dive"`
	StrategyEntities []models.Entity   `json:"strategy_entities" yaml:"strategy_entities" validate:"required,min=1,dive"`
	OrderBias        []OrderBiasRow    `json:"order_bias" yaml:"order_bias" validate:"required,min=1,dive"`
	Segmentation     []SegmentationRow `json:"segmentation" yaml:"segmentation" validate:"required,min=1,dive"`
	Strategies       []StrategyRow     `json:"strategies" yaml:"strategies" validate:"required,min=1,dive"`
	Leakage          []LeakageRow      `json:"leakage" yaml:"leakage" validate:"required,min=1,dive"`

	// Briefing is the research summary given to the chat collaborator.
	Briefing *parser.Document `json:"-" yaml:"-"`
}

// Default returns the embedded dataset.
func Default() (*Dataset, error) {
	return Parse(defaultYAML)
}

// Load reads a dataset from path, or the embedded one when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInvalidDataset, path, info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML. The embedded briefing is attached.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidDataset, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	briefing, err := parser.Parse(summaryMarkdown)
	if err != nil {
		return nil, fmt.Errorf("parse briefing: %w", err)
	}
	ds.Briefing = briefing

	return &ds, nil
}

// Validate checks field constraints and entity set shape.
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidDataset, describe(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := models.ValidateSet(d.Playground); err != nil {
		return fmt.Errorf("%w: playground: %w", ErrInvalidDataset, err)
	}
	// The canonical order is ascending id, so the target must come first.
	target := d.Playground[models.TargetIndex(d.Playground)]
	for _, e := range d.Playground {
		if e.ID < target.ID {
			return fmt.Errorf("%w: playground: target id %d is not the lowest (found %d)", ErrInvalidDataset, target.ID, e.ID)
		}
	}
	if err := models.ValidateSet(d.StrategyEntities); err != nil {
		return fmt.Errorf("%w: strategy_entities: %w", ErrInvalidDataset, err)
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// BriefingContext returns the briefing as prompt text.
func (d *Dataset) BriefingContext() string {
	if d.Briefing == nil {
		return ""
	}
	return d.Briefing.Context()
}
