// Command irinfo prints properties of impulse-response WAV files and how the
// pipeline would load them.
//
// Usage:
//
//	irinfo [flags] [file.wav ...]
//
// Without arguments it describes the compiled-in default IR.
//
// Examples:
//
//	irinfo cab.wav
//	irinfo -rate 44100 -block 64 cab.wav room.wav
//	irinfo -engine direct
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	gowav "github.com/go-audio/wav"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/ir"
	"github.com/cwbudde/ircab/dsp/signal"
	"github.com/cwbudde/ircab/dsp/wav"
	"github.com/cwbudde/ircab/measure/decay"
	"github.com/cwbudde/ircab/resources"
)

const builtinName = "(built-in)"

type report struct {
	name string

	// Container fields, read with the go-audio decoder so that files the
	// pipeline rejects can still be described.
	valid      bool
	format     int
	channels   int
	fileRate   int
	bitDepth   int
	durationS  float64
	sizeBytes  int
	status     wav.Status
	samples    int
	peakDB     float64
	kernelLen  int
	engine     string
	partitions int

	decay     decay.Metrics
	decayOK   bool
	truncLoss float64
}

func main() {
	rate := flag.Float64("rate", 48000, "engine sample rate in Hz")
	block := flag.Int("block", 4, "engine block size in frames")
	engineName := flag.String("engine", "auto", "convolution engine: auto, direct, partitioned")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irinfo [flags] [file.wav ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints impulse-response properties and the kernel the pipeline would build.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, describes the built-in IR.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	eng, err := ir.ParseEngine(*engineName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(*rate), core.WithBlockSize(*block))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	var reports []report
	if flag.NArg() == 0 {
		reports = append(reports, inspect(builtinName, resources.DefaultIR, cfg, ir.WithEngine(eng)))
	}
	for _, path := range flag.Args() {
		blob, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		reports = append(reports, inspect(path, blob, cfg, ir.WithEngine(eng)))
	}
	if len(reports) == 0 {
		fmt.Fprintf(os.Stderr, "error: no readable files\n")
		os.Exit(1)
	}

	if err := printReports(os.Stdout, reports, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// inspect describes blob and, when the pipeline accepts it, the kernel that
// would be built at cfg's rate and block size.
func inspect(name string, blob []byte, cfg core.ProcessorConfig, opts ...ir.Option) report {
	r := report{name: name, sizeBytes: len(blob), peakDB: math.Inf(-1)}

	dec := gowav.NewDecoder(bytes.NewReader(blob))
	if dec.IsValidFile() {
		r.valid = true
		r.format = int(dec.WavAudioFormat)
		r.channels = int(dec.NumChans)
		r.fileRate = int(dec.SampleRate)
		r.bitDepth = int(dec.BitDepth)
		if d, err := dec.Duration(); err == nil {
			r.durationS = d.Seconds()
		}
	}

	audio, err := wav.Decode(blob)
	r.status = wav.StatusOf(err)
	if err != nil {
		return r
	}
	r.samples = len(audio.Samples)
	if peak := signal.Peak(audio.Samples); peak > 0 {
		r.peakDB = core.LinearToDB(peak)
	}
	if m, err := decay.Analyze(audio.Samples, audio.SampleRate); err == nil {
		r.decay, r.decayOK = m, true
	}
	// Raw samples past this point do not survive the kernel length limit.
	keep := int(math.Ceil(float64(ir.MaxKernelLength) * audio.SampleRate / cfg.SampleRate))
	if loss, err := decay.TruncationLossDB(audio.Samples, keep); err == nil {
		r.truncLoss = loss
	} else {
		r.truncLoss = math.Inf(-1)
	}

	h, err := ir.New(audio, cfg.SampleRate, cfg.BlockSize, opts...)
	if err != nil {
		r.status = wav.StatusOther
		return r
	}
	r.kernelLen = h.KernelLen()
	r.engine = h.Engine().String()
	r.partitions = h.Partitions()

	return r
}

func printReports(w io.Writer, reports []report, cfg core.ProcessorConfig) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "File\tStatus\tFormat\tCh\tRate [Hz]\tBits\tDuration [s]\tSamples\tPeak [dB]\tOnset\tEff. Len\tRT [s]\tTrunc. Loss [dB]\tKernel @%g Hz\tEngine\n", cfg.SampleRate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t------\t------\t--\t---------\t----\t------------\t-------\t---------\t-----\t--------\t------\t----------------\t-------------\t------\n"); err != nil {
		return err
	}

	for _, r := range reports {
		format, ch, rate, bits, dur := "-", "-", "-", "-", "-"
		if r.valid {
			format = wav.Format(r.format).String()
			ch = fmt.Sprint(r.channels)
			rate = fmt.Sprint(r.fileRate)
			bits = fmt.Sprint(r.bitDepth)
			dur = fmt.Sprintf("%.3f", r.durationS)
		}

		samples, peak, kernel, engine := "-", "-", "-", "-"
		onset, effLen, rt, loss := "-", "-", "-", "-"
		if r.decayOK {
			onset = fmt.Sprint(r.decay.Onset)
			effLen = fmt.Sprint(r.decay.EffectiveLength)
			if r.decay.RT > 0 {
				rt = fmt.Sprintf("%.3f", r.decay.RT)
			}
		}
		if r.status == wav.StatusSuccess {
			samples = fmt.Sprint(r.samples)
			peak = fmt.Sprintf("%.2f", r.peakDB)
			if !math.IsInf(r.truncLoss, -1) {
				loss = fmt.Sprintf("%.1f", r.truncLoss)
			}
			kernel = fmt.Sprint(r.kernelLen)
			engine = r.engine
			if r.partitions > 0 {
				engine = fmt.Sprintf("%s (%d x %d)", r.engine, r.partitions, cfg.BlockSize)
			}
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.name, r.status, format, ch, rate, bits, dur, samples, peak, onset, effLen, rt, loss, kernel, engine,
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}
