package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"plistrc/internal/corpus"
	"plistrc/internal/corpuscache"
	"plistrc/internal/karchive"
	"plistrc/internal/plistsrc"
	"plistrc/internal/registry"
	"plistrc/internal/schema"
)

func newExtractCmd() *cobra.Command {
	var (
		artifactDefinitions string
		format              string
		output              string
		workers             int
	)

	cmd := &cobra.Command{
		Use:   "extract <source>",
		Short: "Extract per-container schemas from a plist file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdExtract(args[0], artifactDefinitions, format, output, workers)
		},
	}
	cmd.Flags().StringVar(&artifactDefinitions, "artifact-definitions", "", "path to a YAML artifact-definitions file or directory")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVar(&output, "output", "", "directory to write one schema file per input; prints to stdout if empty")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of files to process concurrently")
	return cmd
}

type extractResult struct {
	path   string
	tables []schema.Table
	err    error
}

func cmdExtract(source, artifactDefinitions, format, output string, workers int) error {
	reg := registry.New()
	if artifactDefinitions != "" {
		if err := reg.LoadArtifactDefinitions(artifactDefinitions); err != nil {
			return errors.Wrap(err, "extract: load artifact definitions")
		}
	}

	info, err := os.Stat(source)
	if err != nil {
		return errors.Wrapf(err, "extract: stat %s", source)
	}

	var paths []string
	if info.IsDir() {
		paths, err = corpus.Walk(source)
		if err != nil {
			return errors.Wrapf(err, "extract: walk %s", source)
		}
	} else {
		paths = []string{source}
	}

	cacheSize := len(paths)
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := corpuscache.New[[]schema.Table](cacheSize)
	if err != nil {
		return errors.Wrap(err, "extract: build cache")
	}

	results := runWorkers(paths, workers, cache)

	for _, r := range results {
		identifier := registry.Identifier(filepath.Base(r.path))
		if r.err != nil {
			if logger != nil {
				logger.Warnf("extract: %s: %v", r.path, r.err)
			}
			continue
		}
		if err := writeSchema(identifier, r.tables, format, output); err != nil {
			return err
		}
	}
	return nil
}

func runWorkers(paths []string, workers int, cache *corpuscache.Cache[[]schema.Table]) []extractResult {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make([]extractResult, len(paths))

	var wg sync.WaitGroup
	var mu sync.Mutex
	index := make(map[string]int, len(paths))
	for i, p := range paths {
		index[p] = i
	}

	worker := func() {
		defer wg.Done()
		for path := range jobs {
			tables, err := extractOne(path, cache)
			mu.Lock()
			results[index[path]] = extractResult{path: path, tables: tables, err: err}
			mu.Unlock()
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return results
}

func extractOne(path string, cache *corpuscache.Cache[[]schema.Table]) ([]schema.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if cached, ok := cache.Get(data); ok {
		return cached, nil
	}

	root, err := plistsrc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if karchive.IsEncoded(root) {
		root, err = karchive.Decode(root, karchive.Options{})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	tables := schema.Walk(root)
	cache.Put(data, tables)
	return tables, nil
}

func writeSchema(identifier string, tables []schema.Table, format, output string) error {
	var (
		text string
		ext  string
		err  error
	)

	switch format {
	case "json":
		raw, marshalErr := json.MarshalIndent(tables, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		text, ext = string(raw), "json"
	default:
		text, err = schema.FormatYAML(tables)
		if err != nil {
			return err
		}
		ext = "yaml"
	}

	if output == "" {
		fmt.Println(text)
		return nil
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("extract: mkdir %s: %w", output, err)
	}
	path := filepath.Join(output, identifier+"."+ext)
	return os.WriteFile(path, []byte(text), 0644)
}
