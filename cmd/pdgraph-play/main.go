package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/vsariola/pdgraph"
	"github.com/vsariola/pdgraph/dsp"
	"github.com/vsariola/pdgraph/oto"
	"github.com/vsariola/pdgraph/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the working directory.")
	play := flag.Bool("p", false, "Play the input patches (default behaviour when no other output is defined).")
	seconds := flag.Float64("t", 2, "Length of the rendering in seconds. When only playing, a value <= 0 plays until interrupted.")
	blockSize := flag.Int("b", 0, "Override the block size of the patch documents.")
	rawOut := flag.Bool("r", false, "Output the rendering as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendering as 16-bit .wav file.")
	pcm := flag.Bool("c", false, "Convert .raw output to 16-bit signed PCM.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger := log.New(os.Stderr, "", 0)
	var audioContext *oto.OtoContext
	var audioRate int
	acquire := func(sampleRate int) (*oto.OtoContext, error) {
		if audioContext != nil {
			if audioRate != sampleRate {
				return nil, fmt.Errorf("cannot play at %v Hz: the audio device is already open at %v Hz", sampleRate, audioRate)
			}
			return audioContext, nil
		}
		c, err := oto.NewContext(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("could not acquire oto AudioContext: %w", err)
		}
		audioContext, audioRate = c, sampleRate
		return c, nil
	}
	output := func(filename, extension string, write func(f *os.File) error) error {
		dir := *directory
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %w", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %w", dir, err)
		}
		_, name := filepath.Split(filename)
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not create file %v: %w", name, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %w", filename, err)
		}
		doc, err := pdgraph.LoadDocument(inputBytes)
		if err != nil {
			return err
		}
		if *blockSize > 0 {
			doc.Config.BlockSize = *blockSize
		}
		rt := dsp.NewRuntime(doc.Config, dsp.WithLogger(logger))
		defer rt.Close()
		if _, err := rt.Load(doc); err != nil {
			return fmt.Errorf("could not load patch: %w", err)
		}
		if err := rt.Start(); err != nil {
			// load errors leave objects unbound; the patch still runs
			logger.Printf("%v: %v", filename, err)
		}
		config := rt.Config()
		if !*rawOut && !*wavOut {
			c, err := acquire(config.SampleRate)
			if err != nil {
				return err
			}
			blocks := -1
			if *seconds > 0 {
				blocks = (int(*seconds*float64(config.SampleRate)) + config.BlockSize - 1) / config.BlockSize
			}
			sink := c.Output()
			err = rt.Play(ctx, sink, blocks)
			if cerr := sink.Close(); err == nil {
				err = cerr
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		buffer := make(pdgraph.AudioBuffer, 2*int(*seconds*float64(config.SampleRate)))
		if err := rt.Render(buffer); err != nil {
			return fmt.Errorf("could not render: %w", err)
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %w", err)
			}
			if err := output(filename, ".raw", func(f *os.File) error { _, err := f.Write(raw); return err }); err != nil {
				return fmt.Errorf("error outputting .raw file: %w", err)
			}
		}
		if *wavOut {
			if err := output(filename, ".wav", func(f *os.File) error { return buffer.WriteWav(f, config.SampleRate) }); err != nil {
				return fmt.Errorf("error outputting .wav file: %w", err)
			}
		}
		if *play {
			c, err := acquire(config.SampleRate)
			if err != nil {
				return err
			}
			sink := c.Output()
			if err := sink.WriteAudio(buffer); err != nil {
				sink.Close()
				return err
			}
			return sink.Close()
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			ymlfiles, _ := filepath.Glob(filepath.Join(param, "*.yml"))
			jsonfiles, _ := filepath.Glob(filepath.Join(param, "*.json"))
			files = append(ymlfiles, jsonfiles...)
		}
		for _, file := range files {
			if ctx.Err() != nil {
				break
			}
			if err := process(file); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
		}
	}
	if audioContext != nil {
		audioContext.Close()
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "pdgraph command line utility for rendering and playing .yml/.json patch documents.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
