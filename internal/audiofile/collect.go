package audiofile

import "fmt"

// Collector is a Sink that keeps every rendered block in memory.
type Collector struct {
	channels [][]float32
}

// NewCollector returns a collector for channels output channels.
func NewCollector(channels int) *Collector {
	return &Collector{channels: make([][]float32, channels)}
}

func (c *Collector) Write(block [][]float32) error {
	if len(block) != len(c.channels) {
		return fmt.Errorf("audiofile: got %d channels, want %d", len(block), len(c.channels))
	}
	for i, ch := range block {
		c.channels[i] = append(c.channels[i], ch...)
	}
	return nil
}

// Channel returns the samples collected for channel i.
func (c *Collector) Channel(i int) []float32 {
	return c.channels[i]
}

// Frames returns the number of frames collected.
func (c *Collector) Frames() int {
	if len(c.channels) == 0 {
		return 0
	}
	return len(c.channels[0])
}

func (c *Collector) Close() error { return nil }
