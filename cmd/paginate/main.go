package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/services"
	"case_strategy_editor/services/browser"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/services/printbridge"
	"case_strategy_editor/templates/printdoc"
)

func main() {
	var (
		inputFile    string
		outputFile   string
		geometryFile string
		engine       string
		chromePath   string
		timeout      time.Duration
		jsonOutput   bool
	)

	flag.StringVar(&inputFile, "input", "", "Input HTML file path (editor markup)")
	flag.StringVar(&outputFile, "output", "", "Write the exported PDF to this path")
	flag.StringVar(&geometryFile, "geometry", "", "YAML page geometry file")
	flag.StringVar(&engine, "engine", printbridge.EngineChromedp, "Print engine: chromedp or rod")
	flag.StringVar(&chromePath, "chrome", browser.FindChrome(), "Chrome executable")
	flag.DurationVar(&timeout, "timeout", printbridge.DefaultTimeout, "Timeout for each browser run")
	flag.BoolVar(&jsonOutput, "json", false, "Print boundaries as JSON")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	markup, err := os.ReadFile(inputFile)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	g, err := config.LoadGeometry(geometryFile)
	if err != nil {
		log.Fatalf("Invalid geometry: %v", err)
	}
	opts := browser.Options{ExecPath: chromePath, NoSandbox: true}

	surfaces, shutdown := services.BrowserSurfaces(opts, g, printdoc.DefaultFontStylesheet)
	defer shutdown()
	paginator := services.NewPaginationService(g, pagination.DefaultFrameInterval, timeout, surfaces)

	ctx := context.Background()
	result, err := paginator.Paginate(ctx, string(markup))
	if err != nil {
		log.Fatalf("Pagination failed: %v", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	} else {
		fmt.Printf("%d page(s) at %gpx per page\n", result.Pages, g.ContentHeight())
		for i, b := range result.Boundaries {
			fmt.Printf("  page %d starts before block %d (pos %d)\n", b.Page, result.BlockIndexes[i]+1, b.Pos)
		}
	}

	if outputFile == "" {
		return
	}

	eng, err := printbridge.NewEngine(engine, printbridge.EngineOptions{
		Browser:  opts,
		Viewport: printbridge.Viewport{Width: int(g.PageWidth), Height: int(g.PageHeight)},
	})
	if err != nil {
		log.Fatalf("Invalid engine: %v", err)
	}
	bridge := printbridge.NewBridge(eng, printbridge.Config{
		Geometry:       g,
		FontStylesheet: printdoc.DefaultFontStylesheet,
		Timeout:        timeout,
	})
	exports := services.NewExportService(bridge, engine, g, nil)

	exported, err := exports.Export(ctx, string(markup), services.ExportOptions{})
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if err := os.WriteFile(outputFile, exported.PDF, 0644); err != nil {
		log.Fatalf("Failed to write PDF: %v", err)
	}
	fmt.Printf("Wrote %s (%d page(s) in the PDF, %d on screen)\n", outputFile, exported.PageCount, result.Pages)
}
