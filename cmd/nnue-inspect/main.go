// nnue-inspect prints the header and structure of a network parameter file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/hailam/qnnue"
	"github.com/hailam/qnnue/common"
	"github.com/hailam/qnnue/internal/cpuinfo"
)

type fileInfo struct {
	File        string          `json:"file"`
	Version     string          `json:"version"`
	Hash        string          `json:"hash"`
	Description string          `json:"description"`
	Structure   string          `json:"structure,omitempty"`
	HashMatch   *bool           `json:"hash_match,omitempty"`
	CPU         *cpuinfo.Report `json:"cpu,omitempty"`
}

func main() {
	var (
		filePath string
		dims     int
		asJSON   bool
		showCPU  bool
	)

	app := &cli.Command{
		Name:  "nnue-inspect",
		Usage: "Inspect a quantized network parameter file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to network file",
				Destination: &filePath,
				Required:    true,
			},
			&cli.IntFlag{
				Name:        "dims",
				Usage:       "transformed feature dimensions of the expected standard stack (0 to skip the hash check)",
				Destination: &dims,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit JSON instead of text",
				Destination: &asJSON,
			},
			&cli.BoolFlag{
				Name:        "cpu",
				Usage:       "include host SIMD feature report",
				Destination: &showCPU,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return inspect(filePath, dims, asJSON, showCPU)
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("inspect failed", "error", err)
		os.Exit(1)
	}
}

func inspect(path string, dims int, asJSON, showCPU bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	version, err := common.ReadLittleEndian[uint32](f)
	if err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	hash, err := common.ReadLittleEndian[uint32](f)
	if err != nil {
		return fmt.Errorf("failed to read hash: %w", err)
	}
	descSize, err := common.ReadLittleEndian[uint32](f)
	if err != nil {
		return fmt.Errorf("failed to read description size: %w", err)
	}
	desc := make([]byte, descSize)
	if _, err := io.ReadFull(f, desc); err != nil {
		return fmt.Errorf("failed to read description: %w", err)
	}

	info := fileInfo{
		File:        path,
		Version:     fmt.Sprintf("%08x", version),
		Hash:        fmt.Sprintf("%08x", hash),
		Description: string(desc),
	}
	if dims > 0 {
		net := qnnue.NewStandardNetwork(dims)
		info.Structure = net.StructureString()
		match := net.Hash == hash
		info.HashMatch = &match
	}
	if showCPU {
		report := cpuinfo.Detect()
		info.CPU = &report
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("File: %s\n", info.File)
	fmt.Printf("  Version:     %s", info.Version)
	if version != common.Version {
		fmt.Printf(" (expected %08x)", common.Version)
	}
	fmt.Println()
	fmt.Printf("  Hash:        %s\n", info.Hash)
	fmt.Printf("  Description: %s\n", info.Description)
	if info.Structure != "" {
		fmt.Printf("  Structure:   %s\n", info.Structure)
		fmt.Printf("  Hash match:  %v\n", *info.HashMatch)
	}
	if info.CPU != nil {
		fmt.Printf("  Arch: %s (%d cpus)\n", info.CPU.GoArch, info.CPU.CPUs)
		for name, ok := range info.CPU.Features {
			if ok {
				fmt.Printf("    %s\n", name)
			}
		}
	}
	return nil
}
