package main

import (
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/studyflow/studyflow/internal/config"
	"github.com/studyflow/studyflow/internal/db"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/repository/sqldb"
	"github.com/studyflow/studyflow/internal/services"
)

const instructions = `StudyFlow keeps a spaced repetition schedule of study topics.
Call list_due_reviews to see what a user should revise now, quiz them on each topic,
then call complete_review with a quality from 1 (forgot) to 5 (perfect recall).`

func newMCPServer(reviews services.ReviewService) *server.MCPServer {
	s := server.NewMCPServer(
		"StudyFlow MCP",
		"1.0.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := &toolHandlers{reviews: reviews, now: time.Now}
	s.AddTool(listDueReviewsTool, h.listDueReviews)
	s.AddTool(completeReviewTool, h.completeReview)
	return s
}

func main() {
	cfg := config.Load()

	// stdout carries the protocol, so logs go to stderr.
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(os.Stderr),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	reviews := services.NewReviewService(
		sqldb.NewReviewRepository(database),
		sqldb.NewSubjectRepository(database),
		cfg.Location(),
	)

	log.Info("serving MCP over stdio")
	if err := server.ServeStdio(newMCPServer(reviews)); err != nil {
		log.Error("MCP server error: %v", err)
		os.Exit(1)
	}
}
