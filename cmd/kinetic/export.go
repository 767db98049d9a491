package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/export"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/storage"
)

// withOutput hands fn the named file, or stdout when path is empty.
func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("exported", zap.String("path", path))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	s, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}

	var dist *metrics.Distributions
	if d, err := st.LoadDistributions(meta.ID); err == nil {
		dist = d
	} else if !errors.Is(err, dynamo.ErrRunNotFound) {
		return err
	}

	data := export.NewExportData(meta, s, dist)
	return withOutput(outFile, func(w io.Writer) error { return export.WriteJSON(w, data) })
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	g, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}
	return withOutput(outFile, func(w io.Writer) error { return export.WriteStateCSV(w, g) })
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	g, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := withOutput(path, func(w io.Writer) error {
		return export.WriteSVG(w, g, export.DefaultSVGOptions())
	}); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
