// Package app wires the global mutable state the spec's design notes (§9)
// call out — process-wide embeddings client, graph instance, retriever —
// into a single explicit App value constructed at startup and threaded into
// handlers, instead of package-level globals.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/brightwellhealth/clinicscribe/internal/agentgraph"
	"github.com/brightwellhealth/clinicscribe/internal/agentgraph/checkpoint"
	"github.com/brightwellhealth/clinicscribe/internal/clients/gcsimages"
	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/clients/medical"
	"github.com/brightwellhealth/clinicscribe/internal/clients/ocr"
	"github.com/brightwellhealth/clinicscribe/internal/httpapi"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/ocrstage"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/pipeline"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
	"github.com/brightwellhealth/clinicscribe/internal/vectorstore/sqlitevec"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Router *gin.Engine

	OCR         ocr.Client
	Medical     medical.Client
	LLM         llm.Client
	Checkpoint  *checkpoint.Store
	Index       *sqlitevec.Lazy
	Graph       *agentgraph.Graph
	ImageSource *gcsimages.Source // non-nil only when raw images are bucket-backed

	Pipeline *pipeline.Pipeline
}

// New wires the whole app: logger -> config -> collaborator clients ->
// agent graph -> router.
func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("app: init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	ocrClient, err := ocr.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("app: init ocr client: %w", err)
	}
	medicalClient, err := medical.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("app: init medical client: %w", err)
	}
	llmClient, err := llm.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("app: init llm client: %w", err)
	}
	checkpointStore, err := checkpoint.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("app: init checkpoint store: %w", err)
	}

	indexDir := cfg.IndexDir
	embedDim := cfg.EmbedDim
	lazyIndex := sqlitevec.NewLazy(func() (*sqlitevec.Index, error) {
		return sqlitevec.Load(log, indexDir, embedDim)
	})

	graph := agentgraph.New(
		checkpointStore,
		agentgraph.NewQueryRewriter(log, llmClient),
		agentgraph.NewDocRetriever(llmClient, lazyIndex, cfg.DefaultRetrieveK),
		agentgraph.NewDocGrader(log, llmClient),
		agentgraph.NewAnswerGeneration(llmClient, cfg.MaxChats),
		agentgraph.NewFallbackAgent(),
	)

	layout := pipeline.DefaultLayout(cfg.WorkDir)
	layout.IndexDir = cfg.IndexDir

	var imageSource ocrstage.ImageSource
	var gcsSource *gcsimages.Source
	if cfg.RawImagesBucket != "" {
		gcsSource, err = gcsimages.New(context.Background(), cfg.RawImagesBucket, cfg.RawImagesPrefix)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("app: init raw images bucket: %w", err)
		}
		imageSource = gcsSource
	} else {
		imageSource = ocrstage.LocalDir(layout.RawImagesDir)
	}

	pl := &pipeline.Pipeline{
		Log:         log,
		OCR:         ocrClient,
		Medical:     medicalClient,
		LLM:         llmClient,
		ImageSource: imageSource,
		Layout:      layout,
		EmbedDim:    cfg.EmbedDim,
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Generate: &httpapi.GenerateHandler{Log: log, Graph: graph},
		Search:   &httpapi.SearchHandler{Log: log, SummaryDir: layout.SummaryDir},
	})

	return &App{
		Log:         log,
		Cfg:         cfg,
		Router:      router,
		OCR:         ocrClient,
		Medical:     medicalClient,
		LLM:         llmClient,
		Checkpoint:  checkpointStore,
		Index:       lazyIndex,
		Graph:       graph,
		ImageSource: gcsSource,
		Pipeline:    pl,
	}, nil
}

// Run starts the HTTP surface, blocking until the server exits.
func (a *App) Run() error {
	return a.Router.Run(":" + a.Cfg.Port)
}

// Ingest runs the offline ingestion pipeline to completion (C1-C6).
func (a *App) Ingest(ctx context.Context) (pipeline.Report, error) {
	return a.Pipeline.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.OCR != nil {
		_ = a.OCR.Close()
	}
	if a.Medical != nil {
		_ = a.Medical.Close()
	}
	if a.Checkpoint != nil {
		_ = a.Checkpoint.Close()
	}
	if a.ImageSource != nil {
		_ = a.ImageSource.Close()
	}
	if idx := a.Index.Peek(); idx != nil {
		_ = idx.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
