package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/internal/config"
	"github.com/iwvelando/property-finance/internal/deal"
	"github.com/iwvelando/property-finance/internal/logging"
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/output"
	"github.com/iwvelando/property-finance/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to calculation request file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	analyze := flag.Bool("analyze", false, "request an AI analysis of the results")
	list := flag.Bool("list", false, "list the available calculators and exit")
	flag.Parse()

	registry := calculator.Default()
	if *list {
		for _, calc := range registry.All() {
			fmt.Printf("%-16s %s\n", calc.Name(), calc.Title())
		}
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	calc, err := registry.Get(conf.Calculator)
	if err != nil {
		logger.Fatal("failed to select calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if *analyze {
		conf.Analyze = true
	}

	for _, warning := range conf.ValidateConfiguration(calc) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := calc.Derive(conf.Inputs)
	logger.Debug("derived metrics",
		zap.String("op", "main"),
		zap.String("calculator", calc.Name()),
	)

	var verdict *analysis.Analysis
	if conf.Analyze {
		analyzer, err := analysis.New(conf.AnalyzerConfig(), logger)
		if err != nil {
			logger.Fatal("failed to configure analysis",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		verdict, err = analyzer.Analyze(ctx, calculator.AnalysisRequest(calc, result))
		if err != nil {
			logger.Fatal("failed to analyse results",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	if conf.Store.Path != "" && (conf.Deal.ID != "" || conf.Deal.Name != "") {
		if err := saveToDeal(ctx, conf, calc, result, verdict, logger); err != nil {
			logger.Fatal("failed to save calculation",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	if err := output.Write(os.Stdout, outputFormat, output.NewReport(calc, result, verdict)); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// saveToDeal records the calculation against the configured deal, creating
// the deal first when only a name is given.
func saveToDeal(ctx context.Context, conf *config.Configuration, calc calculator.Calculator, result calculator.Result, verdict *analysis.Analysis, logger *zap.Logger) error {
	store, err := deal.NewSQLiteStore(conf.Store.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	id := conf.Deal.ID
	if id == "" {
		profile, err := store.Create(ctx, deal.Profile{Name: conf.Deal.Name})
		if err != nil {
			return err
		}
		id = profile.ID
	}

	profile, err := store.SaveCalculation(ctx, id, deal.Calculation{
		Calculator: calc.Name(),
		Inputs:     conf.Inputs,
		Metrics:    calculator.Values(result),
		Analysis:   verdict,
	})
	if err != nil {
		return fmt.Errorf("deal %s: %w", id, err)
	}

	logger.Info("saved calculation",
		zap.String("op", "main.saveToDeal"),
		zap.String("deal", profile.ID),
		zap.String("name", profile.Name),
		zap.String("calculator", calc.Name()),
	)
	return nil
}
