package main

import (
	"fmt"
	"log"

	"bedtime_storyteller/config"
	"bedtime_storyteller/generator"
	"bedtime_storyteller/publisher"
)

// app is everything one process needs to tell stories.
type app struct {
	pipeline  *generator.Pipeline
	usage     *generator.UsageCounter
	publisher *publisher.Publisher
	catalog   *publisher.Catalog
}

// buildApp wires config into a ready pipeline. With save false nothing is
// written to disk.
func buildApp(c config.Config, save bool, logger *log.Logger) (*app, error) {
	llm, err := buildLLM(c.LLM)
	if err != nil {
		return nil, err
	}

	usage := generator.NewUsageCounter()
	invOpts := []generator.InvokerOption{
		generator.WithRetryPolicy(generator.RetryPolicy{
			MaxRetries: c.Retry.MaxRetries,
			BaseDelay:  c.Retry.BaseDelay,
			Logger:     logger,
		}),
		generator.WithUsageCounter(usage),
		generator.WithModel(c.LLM.Model),
		generator.WithVerbose(verbose),
		generator.WithLogger(logger),
	}
	if c.LLM.Provider != "mock" {
		invOpts = append(invOpts, generator.WithCredentials(c.LLM.Credential))
	}
	invoker, err := generator.NewInvoker(llm, invOpts...)
	if err != nil {
		return nil, err
	}
	agent, err := generator.NewAgent(invoker, logger)
	if err != nil {
		return nil, err
	}

	a := &app{usage: usage}
	pipeOpts := []generator.PipelineOption{
		generator.WithMaxAttempts(c.Loop.MaxAttempts),
		generator.WithPassScore(c.Loop.PassScore),
		generator.WithPipelineLogger(logger),
	}
	if save {
		if c.CatalogPath != "" {
			a.catalog, err = publisher.OpenCatalog(c.CatalogPath)
			if err != nil {
				// stories are still saved as pages, just not indexed
				logger.Printf("[cli] catalog unavailable: %v", err)
				a.catalog = nil
			}
		}
		a.publisher, err = publisher.New(c.OutputDir, a.catalog, verbose, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		pipeOpts = append(pipeOpts, generator.WithArtifactStore(a.publisher))
	}

	a.pipeline, err = generator.NewPipeline(agent, pipeOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if a.catalog != nil {
		_ = a.catalog.Close()
	}
}

func buildLLM(c config.LLMConfig) (generator.LLMClient, error) {
	switch c.Provider {
	case "openai", "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if c.Provider == "deepseek" && c.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider:    c.Provider,
			Model:       c.Model,
			BaseURL:     c.BaseURL,
			Credentials: c.Credential,
		})
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", c.Provider)
	}
}
