package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-resource/pkg/form"
	"github.com/goliatone/go-resource/pkg/openapi"
	htmlrenderer "github.com/goliatone/go-resource/pkg/renderers/html"
	"github.com/goliatone/go-resource/pkg/renderers/tui"
	"github.com/goliatone/go-resource/pkg/resource"
	"github.com/goliatone/go-resource/pkg/rest"
)

func main() {
	descriptorPath := flag.String("descriptor", "", "resource descriptor YAML path")
	source := flag.String("source", "", "OpenAPI document path or URL to derive the descriptor from")
	resourceName := flag.String("resource", "", "resource name when deriving from an OpenAPI document")
	id := flag.String("id", "", "record identifier (empty starts a new record)")
	output := flag.String("html", "", "render the form as HTML to this file instead of starting a session")
	flag.Parse()

	ctx := context.Background()

	desc, err := loadDescriptor(ctx, *descriptorPath, *source, *resourceName)
	if err != nil {
		log.Fatalf("load descriptor: %v", err)
	}

	cfg, err := rest.ConfigFromEnv(ctx)
	if err != nil {
		log.Fatalf("configure client: %v", err)
	}
	client, err := rest.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("build client: %v", err)
	}

	model, err := buildModel(ctx, desc, client, *id)
	if err != nil {
		log.Fatalf("bind record: %v", err)
	}

	f := form.New(model)
	defer f.Close()

	if *output != "" {
		doc, err := htmlrenderer.New()
		if err != nil {
			log.Fatalf("build renderer: %v", err)
		}
		rendered, err := doc.Render(ctx, f)
		if err != nil {
			log.Fatalf("render form: %v", err)
		}
		if err := os.WriteFile(*output, rendered, 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("Form written to %s\n", *output)
		return
	}

	session, err := tui.New(f)
	if err != nil {
		log.Fatalf("build session: %v", err)
	}
	if err := session.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Println("Aborted.")
			os.Exit(130)
		}
		log.Fatalf("session: %v", err)
	}
}

func loadDescriptor(ctx context.Context, descriptorPath, source, resourceName string) (resource.Descriptor, error) {
	switch {
	case descriptorPath != "":
		return openapi.LoadDescriptorFile(descriptorPath)
	case source != "":
		if resourceName == "" {
			return resource.Descriptor{}, errors.New("-resource is required with -source")
		}
		raw, err := readSource(ctx, source)
		if err != nil {
			return resource.Descriptor{}, err
		}
		return openapi.DeriveDescriptor(ctx, raw, resourceName)
	default:
		return resource.Descriptor{}, errors.New("either -descriptor or -source is required")
	}
}

func readSource(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("build document request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch document: unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(location)
}

func buildModel(ctx context.Context, desc resource.Descriptor, client resource.Client, id string) (*resource.Model, error) {
	if id == "" {
		return resource.New(desc, client)
	}
	return resource.Load(ctx, desc, client, id)
}
