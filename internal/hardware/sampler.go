// Package hardware samples local CPU and memory usage for the dashboard.
package hardware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/schedule"
	"github.com/dm/minerdeck/internal/store"
)

// DefaultInterval is the sampling period.
const DefaultInterval = 2 * time.Second

// Reader takes one hardware reading.
type Reader interface {
	Read(ctx context.Context) (model.HardwareSample, error)
}

// SystemReader reads the host through gopsutil.
type SystemReader struct{}

// Read returns aggregate CPU percent since the previous call and virtual
// memory usage.
func (SystemReader) Read(ctx context.Context) (model.HardwareSample, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return model.HardwareSample{}, fmt.Errorf("cpu: %w", err)
	}
	if len(total) == 0 {
		return model.HardwareSample{}, errors.New("cpu: no reading")
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.HardwareSample{}, fmt.Errorf("memory: %w", err)
	}
	return model.HardwareSample{
		CPUPercent:    total[0],
		MemUsedBytes:  vm.Used,
		MemTotalBytes: vm.Total,
		SampledAt:     time.Now(),
	}, nil
}

// Sampler writes a hardware reading into its store every interval.
type Sampler struct {
	reader   Reader
	out      *store.Value[model.HardwareSample]
	interval time.Duration
	log      logrus.FieldLogger
}

// NewSampler returns a sampler. A nil reader means SystemReader.
func NewSampler(reader Reader, out *store.Value[model.HardwareSample], interval time.Duration, log logrus.FieldLogger) *Sampler {
	if reader == nil {
		reader = SystemReader{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sampler{
		reader:   reader,
		out:      out,
		interval: interval,
		log:      log.WithField("component", "hardware"),
	}
}

// SampleOnce takes one reading. On error the store is left unchanged.
func (s *Sampler) SampleOnce(ctx context.Context) error {
	sample, err := s.reader.Read(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.WithError(err).Debug("hardware sample failed")
		}
		return err
	}
	if sample.SampledAt.IsZero() {
		sample.SampledAt = time.Now()
	}
	s.out.Set(sample)
	return nil
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	h, err := schedule.Every(ctx, s.interval, func(ctx context.Context) {
		_ = s.SampleOnce(ctx)
	}, schedule.RunNow(), schedule.WithName("hardware"), schedule.WithLogger(s.log))
	if err != nil {
		return err
	}
	<-ctx.Done()
	h.Cancel()
	return nil
}
